// Package core bundles the ambient modules every event bus process
// needs: env loading, viper config, zap logging, readiness tracking.
package core

import (
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/core/config"
	"github.com/Sokol111/wallet-eventbus/pkg/core/health"
	"github.com/Sokol111/wallet-eventbus/pkg/core/logger"
	"go.uber.org/fx"
)

// coreOptions holds internal configuration for the core module.
type coreOptions struct {
	loggerConfig  *logger.Config
	disableDotEnv bool
	disableConfig bool
}

// Option is a functional option for configuring the core module.
type Option func(*coreOptions)

// WithLoggerConfig provides a static logger Config (useful for tests).
func WithLoggerConfig(cfg logger.Config) Option {
	return func(opts *coreOptions) {
		opts.loggerConfig = &cfg
	}
}

// WithoutEnvFile disables .env loading.
func WithoutEnvFile() Option {
	return func(opts *coreOptions) {
		opts.disableDotEnv = true
	}
}

// WithoutConfigFile disables config file loading.
func WithoutConfigFile() Option {
	return func(opts *coreOptions) {
		opts.disableConfig = true
	}
}

// NewCoreModule provides config, logger and readiness, with generous
// lifecycle timeouts for slow broker startups.
func NewCoreModule(opts ...Option) fx.Option {
	cfg := &coreOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		fx.StartTimeout(5*time.Minute),
		fx.StopTimeout(5*time.Minute),

		dotEnvModule(cfg),
		viperModule(cfg),
		loggerModule(cfg),
		health.NewReadinessModule(),
	)
}

func dotEnvModule(cfg *coreOptions) fx.Option {
	if cfg.disableDotEnv {
		return fx.Options()
	}
	return config.NewDotEnvModule()
}

func viperModule(cfg *coreOptions) fx.Option {
	if cfg.disableConfig {
		return config.NewViperModule(config.WithoutConfigFile())
	}
	return config.NewViperModule()
}

func loggerModule(cfg *coreOptions) fx.Option {
	if cfg.loggerConfig != nil {
		return logger.NewZapLoggingModule(logger.WithConfig(*cfg.loggerConfig))
	}
	return logger.NewZapLoggingModule()
}
