package logger

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is the minimum logging level ("debug", "info", "warn", "error").
	Level zapcore.Level
	// Development switches to console encoding with human-readable timestamps.
	// Production mode (false) uses JSON encoding.
	Development bool
	// OutputPaths lists URLs or file paths to write log output to.
	// Defaults to stderr when empty.
	OutputPaths []string
}

func newConfig(v *viper.Viper) (Config, error) {
	sub := v.Sub("logger")
	if sub == nil {
		return Config{Level: zapcore.InfoLevel}, nil
	}

	var raw struct {
		Level       string   `mapstructure:"level"`
		Development bool     `mapstructure:"development"`
		OutputPaths []string `mapstructure:"output-paths"`
	}
	if err := sub.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("failed to load logger config: %w", err)
	}

	level := zapcore.InfoLevel
	if raw.Level != "" {
		parsed, err := zapcore.ParseLevel(raw.Level)
		if err != nil {
			return Config{}, fmt.Errorf("invalid log level %q: %w", raw.Level, err)
		}
		level = parsed
	}

	return Config{
		Level:       level,
		Development: raw.Development,
		OutputPaths: raw.OutputPaths,
	}, nil
}
