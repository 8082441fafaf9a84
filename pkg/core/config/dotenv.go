package config

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// dotenvOptions holds configuration for the dotenv module.
type dotenvOptions struct {
	path string
}

// DotEnvOption is a functional option for configuring the dotenv module.
type DotEnvOption func(*dotenvOptions)

// WithDotEnvPath sets a custom path to the .env file.
func WithDotEnvPath(path string) DotEnvOption {
	return func(cfg *dotenvOptions) {
		cfg.path = path
	}
}

// NewDotEnvModule loads environment variables from a .env file before
// viper reads the environment. Loading happens synchronously when the
// module is created; a missing file is not an error.
func NewDotEnvModule(opts ...DotEnvOption) fx.Option {
	cfg := &dotenvOptions{path: ".env"}
	for _, opt := range opts {
		opt(cfg)
	}

	loaded := godotenv.Load(cfg.path) == nil

	return fx.Module("dotenv",
		fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if loaded {
						logger.Info("loaded .env file", zap.String("path", cfg.path))
					} else {
						logger.Debug("no .env file loaded", zap.String("path", cfg.path))
					}
					return nil
				},
			})
		}),
	)
}
