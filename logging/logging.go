// Package logging provides the navcoordinator daemon's structured logger: a
// small zap.SugaredLogger-backed Logger interface with pluggable output
// appenders (console, rotated file), adapted from the teacher's logging
// package down to the surface the coordinator and its CLI actually use.
package logging

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Level is a coarse logging severity, ordered least to most severe.
type Level int8

const (
	DEBUG Level = iota - 1
	INFO
	WARN
	ERROR
)

// String renders the level the way command-line flags and config files spell it.
func (level Level) String() string {
	switch level {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// AsZap converts to the equivalent zapcore level.
func (level Level) AsZap() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func levelFromZap(l zapcore.Level) Level {
	switch l {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.WarnLevel:
		return WARN
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return ERROR
	default:
		return INFO
	}
}

// LevelFromString parses a level name ("debug", "info", "warn"/"warning",
// "error", case-insensitive; "" means info).
func LevelFromString(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return 0, fmt.Errorf("unrecognized log level %q", s)
	}
}

// AtomicLevel is a concurrency-safe Level holder; copying it shares the
// underlying level with the original, same as the zap.AtomicLevel it wraps.
type AtomicLevel struct {
	inner zap.AtomicLevel
}

// NewAtomicLevelAt returns an AtomicLevel initialized to level.
func NewAtomicLevelAt(level Level) AtomicLevel {
	return AtomicLevel{inner: zap.NewAtomicLevelAt(level.AsZap())}
}

// Get returns the current level.
func (a AtomicLevel) Get() Level {
	return levelFromZap(a.inner.Level())
}

// Set updates the current level.
func (a AtomicLevel) Set(level Level) {
	a.inner.SetLevel(level.AsZap())
}

// Appender is a log sink: anything that can accept encoded entries and flush
// itself. zapcore.Core already satisfies this signature, so every appender
// constructor below just returns a zapcore.Core value.
type Appender interface {
	Write(entry zapcore.Entry, fields []zapcore.Field) error
	Sync() error
}

// Logger is the logging surface used throughout navigation/builtin and
// cmd/navcoordinatord: a named, leveled, sugared logger with one or more
// pluggable output appenders.
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
	Fatal(args ...interface{})
	Fatalf(template string, args ...interface{})
	Fatalw(msg string, keysAndValues ...interface{})

	// AddAppender attaches an additional output sink, e.g. a rotated log
	// file alongside the default console appender.
	AddAppender(appender Appender)
	AsZap() *zap.SugaredLogger
	Sync() error
}

// consoleEncoderConfig mirrors the teacher's console encoder tuning: no
// stack traces, ISO8601 timestamps, short caller paths.
func consoleEncoderConfig() zapcore.EncoderConfig {
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

// NewLogger returns a logger that writes Info+ logs to stdout in UTC.
func NewLogger(name string) Logger {
	return newImpl(name, NewAtomicLevelAt(INFO), true, NewStdoutAppender())
}

// NewDebugLogger returns a logger that writes Debug+ logs to stdout in UTC.
func NewDebugLogger(name string) Logger {
	return newImpl(name, NewAtomicLevelAt(DEBUG), true, NewStdoutAppender())
}

// NewBlankLogger returns a Debug+ logger with no appenders attached yet;
// callers add their own via AddAppender.
func NewBlankLogger(name string) Logger {
	return newImpl(name, NewAtomicLevelAt(DEBUG), true)
}

// NewTestLogger returns a logger that writes Debug+ logs to stdout in local
// time, suitable for passing to testutils.WaitForAssertionWithSleep and the
// like.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also captures logs into an
// in-memory observer, for tests that assert on specific log lines.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	logger := newImpl("", NewAtomicLevelAt(DEBUG), false, NewStdoutTestAppender())
	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	logger.AddAppender(observerCore)
	return logger, observedLogs
}
