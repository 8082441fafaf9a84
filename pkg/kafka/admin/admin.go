// Package admin provisions the event topics so producers and consumers
// never race topic auto-creation with the wrong partition count.
package admin

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const (
	// NumPartitions matches the partition count every event topic is
	// created with. Partition assignment hashes the entity id, so all
	// events of one entity stay on one partition.
	NumPartitions = 3

	// RetentionPeriod is how long the broker keeps events.
	RetentionPeriod = 7 * 24 * time.Hour

	replicationFactor = 1
)

// topicCreator is the subset of *kafka.AdminClient the package needs.
type topicCreator interface {
	CreateTopics(ctx context.Context, topics []kafka.TopicSpecification, options ...kafka.CreateTopicsAdminOption) ([]kafka.TopicResult, error)
	Close()
}

// Admin creates and verifies the fixed set of event topics.
type Admin struct {
	client topicCreator
	log    *zap.Logger
}

// New connects an admin client to the configured brokers.
func New(conf config.Config, log *zap.Logger) (*Admin, error) {
	client, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": conf.Brokers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka admin client: %w", err)
	}
	return newAdmin(client, log), nil
}

func newAdmin(client topicCreator, log *zap.Logger) *Admin {
	return &Admin{
		client: client,
		log:    log.With(zap.String("component", "admin")),
	}
}

// EnsureTopics creates every event topic with the standard partition
// count and retention. Topics that already exist are left untouched.
func (a *Admin) EnsureTopics(ctx context.Context) error {
	topics := events.AllTopics()

	specs := make([]kafka.TopicSpecification, len(topics))
	for i, topic := range topics {
		specs[i] = kafka.TopicSpecification{
			Topic:             topic,
			NumPartitions:     NumPartitions,
			ReplicationFactor: replicationFactor,
			Config: map[string]string{
				"retention.ms": strconv.FormatInt(RetentionPeriod.Milliseconds(), 10),
			},
		}
	}

	results, err := a.client.CreateTopics(ctx, specs)
	if err != nil {
		return fmt.Errorf("creating topics: %w", err)
	}

	for _, result := range results {
		switch result.Error.Code() {
		case kafka.ErrNoError:
			a.log.Info("topic created",
				zap.String("topic", result.Topic),
				zap.Int("partitions", NumPartitions))
		case kafka.ErrTopicAlreadyExists:
			a.log.Debug("topic already exists", zap.String("topic", result.Topic))
		default:
			return fmt.Errorf("creating topic %s: %s", result.Topic, result.Error.String())
		}
	}

	return nil
}

// Close releases the underlying admin client.
func (a *Admin) Close() {
	a.client.Close()
}
