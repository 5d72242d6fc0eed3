package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// testAppender writes through tb.Log so each line is attributed to the test that produced it.
type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender that writes through tb.Log. Fields follow the message as
// one JSON object.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	parts := []string{
		entry.Time.Format(DefaultTimeFormatStr),
		strings.ToUpper(entry.Level.String()),
		entry.LoggerName,
	}
	if entry.Caller.Defined {
		parts = append(parts, callerToString(&entry.Caller))
	}
	parts = append(parts, entry.Message)

	var err error
	if len(fields) > 0 {
		enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
		buf, encErr := enc.EncodeEntry(zapcore.Entry{}, fields)
		if encErr == nil {
			parts = append(parts, buf.String())
			buf.Free()
		}
		err = encErr
	}
	tapp.tb.Log(strings.Join(parts, "\t"))
	return err
}

func (tapp *testAppender) Sync() error {
	return nil
}
