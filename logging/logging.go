// Package logging provides the structured, leveled logger used by the bus, register and device
// layers as well as the i2cdev command line tool.
package logging

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	globalMu     sync.RWMutex
	globalLogger = NewLogger("i2cdev")
)

// ReplaceGlobal replaces the global logger.
func ReplaceGlobal(logger Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// Global returns the global logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// NewEncoderConfig returns the encoder config shared by the console appenders. Stacktraces are
// left out and levels are colored.
func NewEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewLogger returns a logger that writes Info and above to stdout, timestamped in UTC.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, true, NewStdoutAppender())
}

// NewDebugLogger is NewLogger at Debug, which includes every failed bus condition and
// transaction.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, true, NewStdoutAppender())
}

// NewBlankLogger returns a Debug logger with no appenders. Add one with AddAppender.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, true)
}

// NewTestLogger returns a Debug logger that writes through tb.Log.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is NewTestLogger that also records every entry, so tests can assert on
// what a bus or driver logged.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return newImpl("", DEBUG, false, NewTestAppender(tb), core), logs
}
