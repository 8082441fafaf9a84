package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// moduleOptions holds internal configuration for the kafka config module.
type moduleOptions struct {
	config *Config
}

// ModuleOption is a functional option for configuring the module.
type ModuleOption func(*moduleOptions)

// WithKafkaConfig provides a static Config instead of loading it from
// viper. Useful for tests.
func WithKafkaConfig(cfg Config) ModuleOption {
	return func(opts *moduleOptions) {
		opts.config = &cfg
	}
}

// NewKafkaConfigModule provides the Kafka Config for DI.
func NewKafkaConfigModule(opts ...ModuleOption) fx.Option {
	cfg := &moduleOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.config != nil {
		static := *cfg.config
		return fx.Provide(func() (Config, error) {
			applyDefaults(&static)
			if err := static.Validate(); err != nil {
				return Config{}, err
			}
			return static, nil
		})
	}
	return fx.Provide(newConfig)
}

func newConfig(v *viper.Viper, logger *zap.Logger) (Config, error) {
	var cfg Config
	if sub := v.Sub("kafka"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load kafka config: %w", err)
		}
	}
	if cfg.Brokers == "" {
		cfg.Brokers = v.GetString("kafka.brokers")
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logger.Info("loaded kafka config",
		zap.String("brokers", cfg.Brokers),
		zap.String("group_id", cfg.Consumer.GroupID),
		zap.String("dlq_topic", cfg.Consumer.DLQTopic),
	)
	return cfg, nil
}
