// Package logger holds the process-wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Init builds the global logger. Development mode logs human-readable
// console output at debug level; otherwise JSON at info level.
func Init(service string, development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	Set(l.With(zap.String("service", service)))
	return nil
}

// Set replaces the global logger.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// L returns the global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log.WithOptions(zap.AddCallerSkip(-1))
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return log.Sync()
}

func Debug(msg string, fields ...zap.Field) { get().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field) { get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field) { get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { get().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { get().Fatal(msg, fields...) }

func get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}
