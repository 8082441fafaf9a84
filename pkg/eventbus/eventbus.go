// Package eventbus is the only surface business logic touches to emit
// domain events. Publishing is a non-critical side effect of the
// primary request: callers log a returned error and move on; they never
// fail their own request over it.
package eventbus

import (
	"context"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/producer"
	"go.uber.org/zap"
)

// EventBus wraps one shared producer. Construct it once at startup and
// hand the same instance to every call site; it holds no mutable state.
type EventBus interface {
	// Publish makes a single delivery attempt.
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishReliable retries transport failures with the configured
	// backoff budget before giving up.
	PublishReliable(ctx context.Context, event events.DomainEvent) error

	// PublishBatch publishes each event independently; the result slice
	// is index-aligned with the input.
	PublishBatch(ctx context.Context, batch []events.DomainEvent) []error
}

type eventBus struct {
	producer   producer.Producer
	maxRetries uint64
	log        *zap.Logger
}

// New creates the bus over an existing producer.
func New(p producer.Producer, conf config.ProducerConfig, log *zap.Logger) EventBus {
	return &eventBus{
		producer:   p,
		maxRetries: conf.MaxRetries,
		log:        log,
	}
}

func (b *eventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	err := b.producer.Publish(ctx, event)
	if err != nil {
		b.log.Warn("event publish failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType.String()),
			zap.Error(err))
	}
	return err
}

func (b *eventBus) PublishReliable(ctx context.Context, event events.DomainEvent) error {
	err := b.producer.PublishWithRetry(ctx, event, b.maxRetries)
	if err != nil {
		b.log.Error("event publish failed after retries",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType.String()),
			zap.Uint64("max_retries", b.maxRetries),
			zap.Error(err))
	}
	return err
}

func (b *eventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) []error {
	return b.producer.PublishBatch(ctx, batch)
}
