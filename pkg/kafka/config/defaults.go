package config

import (
	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/samber/lo"
)

// applyDefaults fills unset fields with the documented defaults.
func applyDefaults(cfg *Config) {
	p := &cfg.Producer
	if p.MaxRetries == 0 {
		p.MaxRetries = defaultProducerMaxRetries
	}
	if p.InitialBackoff == 0 {
		p.InitialBackoff = defaultProducerInitialBackoff
	}
	if p.MaxBackoff == 0 {
		p.MaxBackoff = defaultProducerMaxBackoff
	}
	if p.DeliveryTimeout == 0 {
		p.DeliveryTimeout = defaultDeliveryTimeout
	}
	if p.ReadinessTimeoutSeconds == 0 {
		p.ReadinessTimeoutSeconds = defaultProducerReadinessSec
	}
	if p.FailOnBrokerError == nil {
		p.FailOnBrokerError = lo.ToPtr(true)
	}

	c := &cfg.Consumer
	if c.GroupID == "" {
		c.GroupID = defaultGroupID
	}
	if c.AutoOffsetReset == "" {
		c.AutoOffsetReset = defaultAutoOffsetReset
	}
	if c.MaxRetryAttempts == 0 {
		c.MaxRetryAttempts = defaultMaxRetryAttempts
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = defaultConsumerInitialBackoff
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = defaultConsumerMaxBackoff
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = defaultPollTimeout
	}
	if c.ChannelBufferSize == 0 {
		c.ChannelBufferSize = defaultChannelBufferSize
	}
	if c.DLQTopic == "" {
		c.DLQTopic = events.TopicDeadLetter
	}
	if c.DLQMaxRetries == 0 {
		c.DLQMaxRetries = defaultDLQMaxRetries
	}
}
