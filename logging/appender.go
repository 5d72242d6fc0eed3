package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the time format used by the test appender.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. zapcore.Core implementations, such as the observer
// used in tests, satisfy it.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes human readable log lines to an io.Writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender creates a new appender that outputs to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender creates a new appender that outputs to the given writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// Write outputs the log entry to the underlying stream.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	encoder := zapcore.NewConsoleEncoder(NewEncoderConfig())
	buf, err := encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	_, err = appender.Writer.Write(buf.Bytes())
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

func callerToString(caller *zapcore.EntryCaller) string {
	return fmt.Sprintf("%s:%d", filepath.Base(caller.File), caller.Line)
}
