// Package logger is a thin leveled-logging facade over zap.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar = zap.NewNop().Sugar()

// Init builds the process logger. LOG_LEVEL selects the level (error,
// info, debug); the default is info.
func Init() {
	level := zapcore.InfoLevel
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = zapcore.DebugLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		// Fall back to the example logger rather than refuse to start.
		l = zap.NewExample()
	}
	sugar = l.Sugar()
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	sugar.Debugf(format, v...)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = sugar.Sync()
}
