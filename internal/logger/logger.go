package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// encoderConfig returns the production JSON encoder in production and a
// human-readable console encoder everywhere else
func encoderConfig(env string) (zapcore.EncoderConfig, string) {
	if env == "production" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg, "json"
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg, "console"
}

// ParseLevel maps a configured level name onto a zap level. An empty name
// selects info in production and debug otherwise.
func ParseLevel(env, level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		if env == "production" {
			return zapcore.InfoLevel, nil
		}
		return zapcore.DebugLevel, nil
	}

	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// New creates a new structured logger writing to stdout
func New(env, level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(env, level)
	if err != nil {
		return nil, err
	}

	encCfg, encoding := encoderConfig(env)

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      env != "production",
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if env == "production" {
		config.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	return config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

// NewWithWriter builds a logger with the same encoding as New but writing
// to ws. Tests use it to inspect output.
func NewWithWriter(env string, level zapcore.Level, ws zapcore.WriteSyncer) *zap.Logger {
	encCfg, encoding := encoderConfig(env)

	var enc zapcore.Encoder
	if encoding == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	return zap.New(zapcore.NewCore(enc, ws, level), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
