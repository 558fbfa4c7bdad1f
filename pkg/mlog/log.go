// Package mlog defines the logging contract shared by every core component.
// No component logs through the standard "log" or "fmt" packages directly;
// everything goes through a Logger obtained from context or injected at
// construction time.
package mlog

import "context"

// Logger is the common interface implemented by every log backend used in
// this repository.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)

	// WithFields returns a derived Logger that always includes the given
	// key/value pairs (key, value, key, value, ...).
	WithFields(fields ...any) Logger

	// Sync flushes any buffered log entries.
	Sync() error
}

// NoneLogger discards everything. Useful as a safe default and in tests that
// don't care about log output.
type NoneLogger struct{}

func (l *NoneLogger) Info(args ...any)                  {}
func (l *NoneLogger) Infof(format string, args ...any)  {}
func (l *NoneLogger) Error(args ...any)                 {}
func (l *NoneLogger) Errorf(format string, args ...any) {}
func (l *NoneLogger) Warn(args ...any)                  {}
func (l *NoneLogger) Warnf(format string, args ...any)  {}
func (l *NoneLogger) Debug(args ...any)                 {}
func (l *NoneLogger) Debugf(format string, args ...any) {}
func (l *NoneLogger) Sync() error                       { return nil }

//nolint:ireturn
func (l *NoneLogger) WithFields(fields ...any) Logger { return l }

type loggerContextKey string

const ctxKey loggerContextKey = "logger"

// ContextWithLogger returns a context carrying logger as its Logger value.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, ctxKey, logger)
}

// FromContext extracts the Logger previously stored by ContextWithLogger,
// falling back to a NoneLogger when absent.
//
//nolint:ireturn
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(ctxKey).(Logger); ok {
		return logger
	}

	return &NoneLogger{}
}
