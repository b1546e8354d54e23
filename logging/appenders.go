package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewStdoutAppender returns the default colorized console appender used by
// NewLogger/NewDebugLogger.
func NewStdoutAppender() Appender {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)
}

// NewStdoutTestAppender is like NewStdoutAppender but renders levels
// without color codes. The time zone is not set here: NewTestLogger pairs it
// with a logger that keeps entries in local time.
func NewStdoutTestAppender() Appender {
	cfg := consoleEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)
}

// NewFileAppender returns an appender that writes newline-delimited JSON log
// entries to path, rotating the file with lumberjack once it crosses
// maxSizeMB. Intended for navcoordinatord's --log-file flag, so a
// long-running coordinator process doesn't grow an unbounded log on disk.
func NewFileAppender(path string, maxSizeMB int) Appender {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(consoleEncoderConfig()),
		zapcore.AddSync(writer),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)
}
