// Package producer publishes domain events to the broker log.
package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// Producer publishes domain events. It is safe for concurrent use by
// many request-handling call sites; the underlying connection is shared.
type Producer interface {
	// Publish makes a single delivery attempt. The returned error is
	// either ErrSerialization (permanent) or ErrTransport (transient).
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishWithRetry retries transport failures with bounded
	// exponential backoff, up to maxRetries additional attempts, and
	// returns the last error when the budget is exhausted.
	PublishWithRetry(ctx context.Context, event events.DomainEvent, maxRetries uint64) error

	// PublishBatch publishes every event independently and returns one
	// result per input, index-aligned. Partial success is expected and
	// surfaced, never hidden.
	PublishBatch(ctx context.Context, batch []events.DomainEvent) []error

	// PublishRaw sends pre-encoded bytes to an explicit topic. Used by
	// the dead-letter router, which carries its own envelope format.
	PublishRaw(ctx context.Context, topic string, key, value []byte, headers []kafka.Header) error

	Close()
}

// kafkaProducer is the subset of *kafka.Producer the event producer uses.
type kafkaProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Close()
}

type producer struct {
	client kafkaProducer
	conf   config.ProducerConfig
	log    *zap.Logger
}

func newProducer(client kafkaProducer, conf config.ProducerConfig, log *zap.Logger) Producer {
	return &producer{client: client, conf: conf, log: log}
}

// New connects a producer to the configured brokers. Applications
// built on fx use NewProducerModule instead; New exists for direct
// wiring.
func New(conf config.Config, log *zap.Logger) (Producer, error) {
	client, err := newKafkaClient(conf)
	if err != nil {
		return nil, err
	}
	return newProducer(client, conf.Producer, log), nil
}

func newKafkaClient(conf config.Config) (*kafka.Producer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": conf.Brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return p, nil
}

func (p *producer) Publish(ctx context.Context, event events.DomainEvent) error {
	value, err := events.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	topic := event.Topic()
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.PartitionKey()),
		Value:          value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.EventType.String())},
			{Key: "event-id", Value: []byte(event.ID)},
		},
	}
	injectTraceContext(ctx, msg)
	return p.deliver(ctx, msg)
}

func (p *producer) PublishWithRetry(ctx context.Context, event events.DomainEvent, maxRetries uint64) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.conf.InitialBackoff
	bo.MaxInterval = p.conf.MaxBackoff
	bo.MaxElapsedTime = 0

	operation := func() error {
		err := p.Publish(ctx, event)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrSerialization) {
			return backoff.Permanent(err)
		}
		p.log.Warn("publish attempt failed, retrying",
			zap.String("event_id", event.ID),
			zap.String("topic", event.Topic()),
			zap.Error(err))
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
}

func (p *producer) PublishBatch(ctx context.Context, batch []events.DomainEvent) []error {
	results := make([]error, len(batch))
	failed := 0
	for i, event := range batch {
		results[i] = p.Publish(ctx, event)
		if results[i] != nil {
			failed++
		}
	}
	if failed > 0 {
		p.log.Warn("batch publish finished with failures",
			zap.Int("total", len(batch)),
			zap.Int("failed", failed))
	}
	return results
}

func (p *producer) PublishRaw(ctx context.Context, topic string, key, value []byte, headers []kafka.Header) error {
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
		Headers:        headers,
	}
	return p.deliver(ctx, msg)
}

// deliver produces the message and waits for its delivery report, so a
// returned nil means the record is in the broker log.
func (p *producer) deliver(ctx context.Context, msg *kafka.Message) error {
	deliveryChan := make(chan kafka.Event, 1)
	if err := p.client.Produce(msg, deliveryChan); err != nil {
		return fmt.Errorf("%w: failed to enqueue message to %s: %v", ErrTransport, msg.TopicPartition, err)
	}

	if p.conf.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.conf.DeliveryTimeout)
		defer cancel()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: delivery report not received: %v", ErrTransport, ctx.Err())
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("%w: unexpected event type from delivery channel: %T", ErrTransport, e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("%w: delivery to %s failed: %v", ErrTransport, msg.TopicPartition, m.TopicPartition.Error)
		}
		return nil
	}
}

func (p *producer) Close() {
	p.client.Close()
}
