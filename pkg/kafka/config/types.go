// Package config holds the Kafka configuration for the event bus
// producer and consumers.
package config

import "time"

// Config is the root Kafka configuration, loaded from the "kafka"
// section of the config file.
type Config struct {
	Brokers  string         `mapstructure:"brokers"`  // Comma-separated broker addresses (e.g. "localhost:9092")
	Producer ProducerConfig `mapstructure:"producer"` // Producer settings
	Consumer ConsumerConfig `mapstructure:"consumer"` // Consumer group settings
}

// ProducerConfig configures publish behavior.
type ProducerConfig struct {
	MaxRetries              uint64        `mapstructure:"max-retries"`               // Retry budget for PublishWithRetry (transport failures only)
	InitialBackoff          time.Duration `mapstructure:"initial-backoff"`           // First retry delay
	MaxBackoff              time.Duration `mapstructure:"max-backoff"`               // Upper bound for the exponential backoff curve
	DeliveryTimeout         time.Duration `mapstructure:"delivery-timeout"`          // How long a single publish waits for its delivery report
	ReadinessTimeoutSeconds int           `mapstructure:"readiness-timeout-seconds"` // Broker wait at startup (0 = no timeout)
	FailOnBrokerError       *bool         `mapstructure:"fail-on-broker-error"`      // Fail startup when brokers are unreachable (default true)
}

// ConsumerConfig configures one consumer group instance.
type ConsumerConfig struct {
	GroupID           string        `mapstructure:"group-id"`            // Consumer group id (main-app, analytics, audit, ...)
	AutoOffsetReset   string        `mapstructure:"auto-offset-reset"`   // "earliest" or "latest"
	MaxRetryAttempts  int           `mapstructure:"max-retry-attempts"`  // Attempt budget per handler per event for temporary failures
	InitialBackoff    time.Duration `mapstructure:"initial-backoff"`     // First local retry delay
	MaxBackoff        time.Duration `mapstructure:"max-backoff"`         // Upper bound for local retry backoff
	PollTimeout       time.Duration `mapstructure:"poll-timeout"`        // Broker poll timeout per ReadMessage call
	ChannelBufferSize int           `mapstructure:"channel-buffer-size"` // Internal record channel size between reader and dispatcher
	DLQTopic          string        `mapstructure:"dlq-topic"`           // Dead-letter topic (default events.dead_letter)
	DLQMaxRetries     uint64        `mapstructure:"dlq-max-retries"`     // Retry budget for the dead-letter re-publish itself
}
