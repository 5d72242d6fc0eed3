package logging

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logger handed to every bus, register layer and device constructor.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	SetLevel(level Level)
	GetLevel() Level
	// Sublogger returns a logger named "<name>.<subname>" that writes to the same appenders. Its
	// level starts at the parent's and changes independently afterwards.
	Sublogger(subname string) Logger
	AddAppender(appender Appender)
	Sync() error
}

type impl struct {
	name      string
	level     AtomicLevel
	inUTC     bool
	appenders []Appender
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return newImpl(name, imp.level.Get(), imp.inUTC, imp.appenders...)
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (imp *impl) Debug(args ...interface{}) { imp.print(DEBUG, args) }

func (imp *impl) Debugf(template string, args ...interface{}) { imp.printf(DEBUG, template, args) }

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.printw(DEBUG, msg, keysAndValues)
}

func (imp *impl) Info(args ...interface{}) { imp.print(INFO, args) }

func (imp *impl) Infof(template string, args ...interface{}) { imp.printf(INFO, template, args) }

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.printw(INFO, msg, keysAndValues)
}

func (imp *impl) Warn(args ...interface{}) { imp.print(WARN, args) }

func (imp *impl) Warnf(template string, args ...interface{}) { imp.printf(WARN, template, args) }

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.printw(WARN, msg, keysAndValues)
}

func (imp *impl) Error(args ...interface{}) { imp.print(ERROR, args) }

func (imp *impl) Errorf(template string, args ...interface{}) { imp.printf(ERROR, template, args) }

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.printw(ERROR, msg, keysAndValues)
}

// print, printf and printw sit exactly one frame below the public methods, so emit finds the
// caller of the public method three frames up.
const callerSkip = 3

func (imp *impl) print(level Level, args []interface{}) {
	if level >= imp.level.Get() {
		imp.emit(level, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) printf(level Level, template string, args []interface{}) {
	if level >= imp.level.Get() {
		imp.emit(level, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) printw(level Level, msg string, keysAndValues []interface{}) {
	if level >= imp.level.Get() {
		imp.emit(level, msg, toFields(keysAndValues))
	}
}

func (imp *impl) emit(level Level, msg string, fields []zapcore.Field) {
	entry := zapcore.Entry{
		LoggerName: imp.name,
		Level:      level.AsZap(),
		Time:       time.Now(),
		Message:    msg,
		Caller:     callerAt(callerSkip),
	}
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// toFields pairs up keys and values. A trailing key without a value is kept with a placeholder.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.String(key, "unpaired log key"))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func callerAt(skip int) zapcore.EntryCaller {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return zapcore.EntryCaller{}
	}
	caller := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
