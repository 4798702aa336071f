// Package logger builds the zap loggers used across the service and carries
// them through context.Context and gin requests.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormat is the timestamp layout of every log line.
const DefaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config selects level, encoding and sink. Format "console" gives colored
// human output; anything else is JSON. Output is stdout, stderr or a file
// path opened for append. Service and Env, when set, are stamped on every
// entry.
type Config struct {
	Level      string
	Format     string
	Output     string
	TimeFormat string
	Service    string
	Env        string
}

// New creates a zap logger with caller info and error-level stacktraces.
// Callers that export logs over OTLP tee Core() of the result with the
// bridge core.
func New(cfg *Config) (*zap.Logger, error) {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(newEncoder(cfg), sink, ParseLevel(cfg.Level))

	var stamp []zap.Field
	if cfg.Service != "" {
		stamp = append(stamp, zap.String("service", cfg.Service))
	}
	if cfg.Env != "" {
		stamp = append(stamp, zap.String("env", cfg.Env))
	}
	return zap.New(core.With(stamp), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel converts a level name to zapcore.Level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(cfg *Config) zapcore.Encoder {
	layout := cfg.TimeFormat
	if layout == "" {
		layout = DefaultTimeFormat
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	enc.EncodeDuration = zapcore.MillisDurationEncoder
	enc.FunctionKey = zapcore.OmitKey

	if strings.EqualFold(cfg.Format, "console") {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(enc)
	}
	return zapcore.NewJSONEncoder(enc)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", output, err)
	}
	return zapcore.AddSync(f), nil
}
