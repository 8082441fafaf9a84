package config

import "time"

const (
	// Default values.
	defaultProducerMaxRetries      = 3
	defaultProducerInitialBackoff  = 500 * time.Millisecond
	defaultProducerMaxBackoff      = 10 * time.Second
	defaultDeliveryTimeout         = 15 * time.Second
	defaultProducerReadinessSec    = 30
	defaultGroupID                 = "main-app"
	defaultAutoOffsetReset         = "earliest"
	defaultMaxRetryAttempts        = 3
	defaultConsumerInitialBackoff  = 1 * time.Second
	defaultConsumerMaxBackoff      = 30 * time.Second
	defaultPollTimeout             = 5 * time.Second
	defaultChannelBufferSize       = 100
	defaultDLQMaxRetries           = 3

	// Validation bounds.
	minRetryAttempts     = 1
	maxRetryAttempts     = 100
	minInitialBackoff    = 100 * time.Millisecond
	maxInitialBackoff    = 30 * time.Second
	minMaxBackoff        = 1 * time.Second
	maxMaxBackoff        = 5 * time.Minute
	minPollTimeout       = 100 * time.Millisecond
	maxPollTimeout       = 30 * time.Second
	minChannelBufferSize = 10
	maxChannelBufferSize = 10000
	maxReadinessSeconds  = 600
)
