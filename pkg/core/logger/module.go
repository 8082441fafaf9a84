package logger

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// moduleOptions holds internal configuration for the logger module.
type moduleOptions struct {
	config *Config
}

// Option is a functional option for configuring the logger module.
type Option func(*moduleOptions)

// WithConfig provides a static logger Config instead of loading it from
// viper. Useful for tests.
func WithConfig(cfg Config) Option {
	return func(opts *moduleOptions) {
		opts.config = &cfg
	}
}

// NewZapLoggingModule provides a configured *zap.Logger and routes fx's
// own lifecycle events through it.
func NewZapLoggingModule(opts ...Option) fx.Option {
	cfg := &moduleOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	configProvider := fx.Provide(newConfig)
	if cfg.config != nil {
		configProvider = fx.Supply(*cfg.config)
	}

	return fx.Options(
		configProvider,
		fx.Provide(provideLogger),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func provideLogger(lc fx.Lifecycle, conf Config) (*zap.Logger, error) {
	logger, err := newLogger(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := logger.Sync(); err != nil {
				// Syncing stderr fails on some platforms; not actionable.
				if pathErr, ok := err.(*os.PathError); ok && pathErr.Err.Error() == "invalid argument" {
					return nil
				}
				return err
			}
			return nil
		},
	})

	return logger, nil
}
