package mongo

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ConnectionString string        `mapstructure:"connection-string"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	Database         string        `mapstructure:"database"`
	ConnectTimeout   time.Duration `mapstructure:"connect-timeout"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Host:           "localhost",
		Port:           27017,
		ConnectTimeout: 10 * time.Second,
	}

	if sub := v.Sub("mongo"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load mongo config: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Database == "" {
		return fmt.Errorf("mongo config: database is required")
	}
	if cfg.ConnectionString == "" && (cfg.Host == "" || cfg.Port == 0) {
		return fmt.Errorf("mongo config: host and port are required without a connection string")
	}
	return nil
}

func (c Config) uri() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	if c.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", c.Username, c.Password, c.Host, c.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d", c.Host, c.Port)
}
