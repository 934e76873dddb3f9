package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the production logger: JSON, ISO8601 timestamps, level from
// LOG_LEVEL (invalid values keep info). Development env adds stack traces on warn.
func New(service, level, env string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err == nil {
			config.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
	if env == "development" {
		config.Development = true
	}

	return config.Build(
		zap.Fields(
			zap.String("service", service),
			zap.String("env", env),
		),
	)
}
