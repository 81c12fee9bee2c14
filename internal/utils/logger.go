// internal/utils/logger.go

package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for logging throughout the application.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// LogConfig controls how NewLogger builds the zap core.
type LogConfig struct {
	Level       string   // debug, info, warn, error
	Development bool     // console encoder and stack traces
	OutputPaths []string // defaults to stderr so stdout stays free for results
}

// ZapLogger implements Logger on top of a zap SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a zap-backed logger from cfg.
func NewLogger(cfg LogConfig) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	encoding := "json"
	encoderCfg := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoding = "console"
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

// NewDefaultLogger returns an info-level JSON logger, or a no-op logger if zap
// cannot open its outputs.
func NewDefaultLogger() Logger {
	logger, err := NewLogger(LogConfig{Level: "info"})
	if err != nil {
		return NewNopLogger()
	}
	return logger
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

// NewComponentLogger returns the default logger tagged with component=name.
func NewComponentLogger(name string) Logger {
	return NewDefaultLogger().WithField("component", name)
}

// NewZapLogger wraps an existing zap logger, mainly for tests using zaptest/observer.
func NewZapLogger(l *zap.Logger) Logger {
	return &ZapLogger{sugar: l.Sugar()}
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

func (l *ZapLogger) Debug(msg string)                          { l.sugar.Debug(msg) }
func (l *ZapLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *ZapLogger) Info(msg string)                           { l.sugar.Info(msg) }
func (l *ZapLogger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Warn(msg string)                           { l.sugar.Warn(msg) }
func (l *ZapLogger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *ZapLogger) Error(msg string)                          { l.sugar.Error(msg) }
func (l *ZapLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

func (l *ZapLogger) WithField(key string, value interface{}) Logger {
	return &ZapLogger{sugar: l.sugar.With(key, value)}
}

func (l *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &ZapLogger{sugar: l.sugar.With(args...)}
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
