// Package container provides testcontainers helpers for integration
// tests.
package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

// KafkaContainer wraps the testcontainers Kafka container.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   string
}

// KafkaContainerOption configures the Kafka container
type KafkaContainerOption func(*kafkaContainerOptions)

type kafkaContainerOptions struct {
	image     string
	clusterID string
}

// WithKafkaImage sets the Kafka image to use
func WithKafkaImage(image string) KafkaContainerOption {
	return func(o *kafkaContainerOptions) {
		o.image = image
	}
}

// WithClusterID sets the KRaft cluster id
func WithClusterID(id string) KafkaContainerOption {
	return func(o *kafkaContainerOptions) {
		o.clusterID = id
	}
}

// StartKafkaContainer starts a single-node KRaft Kafka container and
// returns the bootstrap servers string.
func StartKafkaContainer(ctx context.Context, opts ...KafkaContainerOption) (*KafkaContainer, error) {
	options := &kafkaContainerOptions{
		image:     "confluentinc/confluent-local:7.5.0",
		clusterID: "test-cluster",
	}
	for _, opt := range opts {
		opt(options)
	}

	kafkaContainer, err := kafka.Run(ctx, options.image, kafka.WithClusterID(options.clusterID))
	if err != nil {
		return nil, fmt.Errorf("failed to start kafka container: %w", err)
	}

	brokers, err := kafkaContainer.Brokers(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(kafkaContainer)
		return nil, fmt.Errorf("failed to get kafka brokers: %w", err)
	}

	return &KafkaContainer{
		Container: kafkaContainer,
		Brokers:   strings.Join(brokers, ","),
	}, nil
}

// Terminate stops and removes the container.
func (k *KafkaContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(k.Container)
}
