package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Brokers) == "" {
		return fmt.Errorf("kafka brokers must not be empty")
	}
	if err := c.Producer.validate(); err != nil {
		return fmt.Errorf("producer config: %w", err)
	}
	if err := c.Consumer.validate(); err != nil {
		return fmt.Errorf("consumer config: %w", err)
	}
	return nil
}

func (p ProducerConfig) validate() error {
	if err := validateBackoff(p.InitialBackoff, p.MaxBackoff); err != nil {
		return err
	}
	if p.ReadinessTimeoutSeconds < 0 || p.ReadinessTimeoutSeconds > maxReadinessSeconds {
		return fmt.Errorf("readiness-timeout-seconds must be between 0 and %d, got %d",
			maxReadinessSeconds, p.ReadinessTimeoutSeconds)
	}
	return nil
}

func (c ConsumerConfig) validate() error {
	if strings.TrimSpace(c.GroupID) == "" {
		return fmt.Errorf("group-id must not be empty")
	}
	if c.AutoOffsetReset != "earliest" && c.AutoOffsetReset != "latest" {
		return fmt.Errorf("auto-offset-reset must be \"earliest\" or \"latest\", got %q", c.AutoOffsetReset)
	}
	if c.MaxRetryAttempts < minRetryAttempts || c.MaxRetryAttempts > maxRetryAttempts {
		return fmt.Errorf("max-retry-attempts must be between %d and %d, got %d",
			minRetryAttempts, maxRetryAttempts, c.MaxRetryAttempts)
	}
	if err := validateBackoff(c.InitialBackoff, c.MaxBackoff); err != nil {
		return err
	}
	if c.PollTimeout < minPollTimeout || c.PollTimeout > maxPollTimeout {
		return fmt.Errorf("poll-timeout must be between %s and %s, got %s",
			minPollTimeout, maxPollTimeout, c.PollTimeout)
	}
	if c.ChannelBufferSize < minChannelBufferSize || c.ChannelBufferSize > maxChannelBufferSize {
		return fmt.Errorf("channel-buffer-size must be between %d and %d, got %d",
			minChannelBufferSize, maxChannelBufferSize, c.ChannelBufferSize)
	}
	if strings.TrimSpace(c.DLQTopic) == "" {
		return fmt.Errorf("dlq-topic must not be empty")
	}
	return nil
}

func validateBackoff(initial, max time.Duration) error {
	if initial < minInitialBackoff || initial > maxInitialBackoff {
		return fmt.Errorf("initial-backoff must be between %s and %s, got %s",
			minInitialBackoff, maxInitialBackoff, initial)
	}
	if max < minMaxBackoff || max > maxMaxBackoff {
		return fmt.Errorf("max-backoff must be between %s and %s, got %s",
			minMaxBackoff, maxMaxBackoff, max)
	}
	if max < initial {
		return fmt.Errorf("max-backoff (%s) must not be smaller than initial-backoff (%s)", max, initial)
	}
	return nil
}
