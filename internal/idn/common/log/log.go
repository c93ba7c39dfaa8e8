// Package log is the structured logging facade for rr-idn. Components take a
// Logger so tests can swap in a recorder; the package-level helpers write to
// a global zap-backed logger.
package log

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the rr-idn logging interface.
type Logger interface {
	Info(fields map[string]any, msg string)
	Error(fields map[string]any, msg string)
	Debug(fields map[string]any, msg string)
	Warn(fields map[string]any, msg string)
	Panic(fields map[string]any, msg string)
	Fatal(fields map[string]any, msg string)
}

type holder struct{ Logger }

var global atomic.Value // holder

func init() {
	global.Store(holder{newZapLogger(false, zapcore.InfoLevel)})
}

// SetLogger replaces the global logger instance.
func SetLogger(l Logger) {
	global.Store(holder{l})
}

// GetLogger returns the current global logger instance.
func GetLogger() Logger {
	return global.Load().(holder).Logger
}

// Configure sets up the global logger for env ("dev" or "prod") and level.
func Configure(env, level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	SetLogger(newZapLogger(env != "prod", lvl))
	return nil
}

// Info logs at info level using the global logger.
func Info(fields map[string]any, msg string) { GetLogger().Info(fields, msg) }

// Error logs at error level using the global logger.
func Error(fields map[string]any, msg string) { GetLogger().Error(fields, msg) }

// Debug logs at debug level using the global logger.
func Debug(fields map[string]any, msg string) { GetLogger().Debug(fields, msg) }

// Warn logs at warn level using the global logger.
func Warn(fields map[string]any, msg string) { GetLogger().Warn(fields, msg) }

// Panic logs at panic level using the global logger, then panics.
func Panic(fields map[string]any, msg string) { GetLogger().Panic(fields, msg) }

// Fatal logs at fatal level using the global logger, then exits.
func Fatal(fields map[string]any, msg string) { GetLogger().Fatal(fields, msg) }

// zapLogger implements Logger using Uber's zap.
type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(dev bool, level zapcore.Level) Logger {
	var config zap.Config
	if dev {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "msg"
	config.EncoderConfig.LevelKey = "level"
	// conversion output goes to stdout; keep logs off it
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return NewNoopLogger()
	}
	return &zapLogger{base: logger}
}

func (l *zapLogger) Info(fields map[string]any, msg string) {
	l.base.Info(msg, zapFields(fields)...)
}

func (l *zapLogger) Error(fields map[string]any, msg string) {
	l.base.Error(msg, zapFields(fields)...)
}

func (l *zapLogger) Debug(fields map[string]any, msg string) {
	if !l.base.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	l.base.Debug(msg, zapFields(fields)...)
}

func (l *zapLogger) Warn(fields map[string]any, msg string) {
	l.base.Warn(msg, zapFields(fields)...)
}

func (l *zapLogger) Panic(fields map[string]any, msg string) {
	l.base.Panic(msg, zapFields(fields)...)
}

func (l *zapLogger) Fatal(fields map[string]any, msg string) {
	l.base.Fatal(msg, zapFields(fields)...)
}

func zapFields(m map[string]any) []zap.Field {
	fields := make([]zap.Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

// noopLogger discards all log messages.
type noopLogger struct{}

func (noopLogger) Info(map[string]any, string)  {}
func (noopLogger) Error(map[string]any, string) {}
func (noopLogger) Debug(map[string]any, string) {}
func (noopLogger) Warn(map[string]any, string)  {}
func (noopLogger) Panic(map[string]any, string) {}
func (noopLogger) Fatal(map[string]any, string) {}

// NewNoopLogger returns a Logger that discards all log messages.
func NewNoopLogger() Logger {
	return noopLogger{}
}
