// File: internal/services/logger.go
package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// LoggerOptions controls how NewLogger builds the zap core.
type LoggerOptions struct {
	Level       string
	File        string
	Development bool
}

// ZapLogger adapts a zap SugaredLogger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

func (z *ZapLogger) Info(msg string, keysAndValues ...interface{})  { z.sugar.Infow(msg, keysAndValues...) }
func (z *ZapLogger) Error(msg string, keysAndValues ...interface{}) { z.sugar.Errorw(msg, keysAndValues...) }
func (z *ZapLogger) Debug(msg string, keysAndValues ...interface{}) { z.sugar.Debugw(msg, keysAndValues...) }
func (z *ZapLogger) Warn(msg string, keysAndValues ...interface{})  { z.sugar.Warnw(msg, keysAndValues...) }

// Named returns a child logger tagged with the service name.
func (z *ZapLogger) Named(service string) *ZapLogger {
	return &ZapLogger{sugar: z.sugar.With("service", service)}
}

// RedirectStdLog sends the standard library logger, used by the
// repositories, through zap at info level. Call the result to undo it.
func (z *ZapLogger) RedirectStdLog() func() {
	return zap.RedirectStdLog(z.sugar.Desugar())
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

func levelFromString(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewZapLogger builds the process logger. Output goes to stdout and, when
// opts.File is set, to a file rotated daily and kept for a week.
func NewZapLogger(opts LoggerOptions) (*ZapLogger, error) {
	lvl := levelFromString(opts.Level)

	var encoder zapcore.Encoder
	if opts.Development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if opts.File != "" {
		rotator, err := rotatelogs.New(
			opts.File+".%Y%m%d",
			rotatelogs.WithLinkName(opts.File),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithMaxAge(7*24*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sinks = append(sinks, zapcore.AddSync(rotator))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), lvl)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

// NewLogger is the environment-based logger factory used by services that
// are constructed without an injected logger.
func NewLogger(service string) Logger {
	env := os.Getenv("GO_ENV")
	if env == "test" {
		return &NoOpLogger{}
	}
	logger, err := NewZapLogger(LoggerOptions{
		Level:       os.Getenv("LOG_LEVEL"),
		File:        os.Getenv("LOG_FILE"),
		Development: env != "production",
	})
	if err != nil {
		return &NoOpLogger{}
	}
	return logger.Named(service)
}
