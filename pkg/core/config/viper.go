// Package config wires environment and file configuration for the
// event bus processes.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// viperOptions holds internal configuration for the viper module.
type viperOptions struct {
	configPath   *string
	noConfigFile bool
}

// ViperOption is a functional option for configuring the viper module.
type ViperOption func(*viperOptions)

// WithConfigPath sets a direct path to the configuration file,
// overriding resolution from the CONFIG_FILE environment variable.
func WithConfigPath(path string) ViperOption {
	return func(cfg *viperOptions) {
		cfg.configPath = &path
	}
}

// WithoutConfigFile disables config file loading. Viper is still
// provided for DI, backed only by environment variables.
func WithoutConfigFile() ViperOption {
	return func(cfg *viperOptions) {
		cfg.noConfigFile = true
	}
}

// FilePath is the resolved config file path. Empty means no file.
type FilePath string

// NewViperModule provides a *viper.Viper. The config path comes from
// the CONFIG_FILE environment variable unless overridden by options.
func NewViperModule(opts ...ViperOption) fx.Option {
	cfg := &viperOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Module("viper",
		fx.Supply(resolveConfigPath(cfg)),
		fx.Provide(newViper),
	)
}

func resolveConfigPath(cfg *viperOptions) FilePath {
	if cfg.noConfigFile {
		return ""
	}
	if cfg.configPath != nil {
		return FilePath(*cfg.configPath)
	}
	return FilePath(os.Getenv("CONFIG_FILE"))
}

func newViper(configFile FilePath, logger *zap.Logger) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile == "" {
		logger.Info("no config file specified, using environment only")
		return v, nil
	}

	v.SetConfigFile(string(configFile))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", configFile, err)
	}

	logger.Info("configuration loaded",
		zap.String("configFile", v.ConfigFileUsed()),
		zap.Int("settingsCount", len(v.AllSettings())),
	)
	return v, nil
}
