package eventbus

import (
	"context"
	"testing"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/producer"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockProducer is a test implementation of producer.Producer.
type mockProducer struct {
	publishFunc      func(ctx context.Context, event events.DomainEvent) error
	retryFunc        func(ctx context.Context, event events.DomainEvent, maxRetries uint64) error
	batchFunc        func(ctx context.Context, batch []events.DomainEvent) []error
	retriesRequested uint64
}

func (m *mockProducer) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.publishFunc(ctx, event)
}

func (m *mockProducer) PublishWithRetry(ctx context.Context, event events.DomainEvent, maxRetries uint64) error {
	m.retriesRequested = maxRetries
	return m.retryFunc(ctx, event, maxRetries)
}

func (m *mockProducer) PublishBatch(ctx context.Context, batch []events.DomainEvent) []error {
	return m.batchFunc(ctx, batch)
}

func (m *mockProducer) PublishRaw(ctx context.Context, topic string, key, value []byte, headers []kafka.Header) error {
	return nil
}

func (m *mockProducer) Close() {}

func TestEventBus_Publish(t *testing.T) {
	t.Run("delegates to the producer", func(t *testing.T) {
		var published events.DomainEvent
		mock := &mockProducer{
			publishFunc: func(ctx context.Context, event events.DomainEvent) error {
				published = event
				return nil
			},
		}
		bus := New(mock, config.ProducerConfig{MaxRetries: 3}, zap.NewNop())

		event := events.New(events.TransactionPosted, "tx-42")
		require.NoError(t, bus.Publish(context.Background(), event))
		assert.Equal(t, event, published)
	})

	t.Run("surfaces the producer error", func(t *testing.T) {
		mock := &mockProducer{
			publishFunc: func(ctx context.Context, event events.DomainEvent) error {
				return producer.ErrTransport
			},
		}
		bus := New(mock, config.ProducerConfig{MaxRetries: 3}, zap.NewNop())

		err := bus.Publish(context.Background(), events.New(events.UserCreated, "user-1"))
		assert.ErrorIs(t, err, producer.ErrTransport)
	})
}

func TestEventBus_PublishReliable(t *testing.T) {
	t.Run("uses the configured retry budget", func(t *testing.T) {
		mock := &mockProducer{
			retryFunc: func(ctx context.Context, event events.DomainEvent, maxRetries uint64) error {
				return nil
			},
		}
		bus := New(mock, config.ProducerConfig{MaxRetries: 7}, zap.NewNop())

		require.NoError(t, bus.PublishReliable(context.Background(), events.New(events.UserCreated, "user-1")))
		assert.Equal(t, uint64(7), mock.retriesRequested)
	})

	t.Run("surfaces the exhausted-retries error", func(t *testing.T) {
		mock := &mockProducer{
			retryFunc: func(ctx context.Context, event events.DomainEvent, maxRetries uint64) error {
				return producer.ErrTransport
			},
		}
		bus := New(mock, config.ProducerConfig{MaxRetries: 3}, zap.NewNop())

		err := bus.PublishReliable(context.Background(), events.New(events.UserCreated, "user-1"))
		assert.ErrorIs(t, err, producer.ErrTransport)
	})
}

func TestEventBus_PublishBatch(t *testing.T) {
	mock := &mockProducer{
		batchFunc: func(ctx context.Context, batch []events.DomainEvent) []error {
			return []error{nil, producer.ErrTransport}
		},
	}
	bus := New(mock, config.ProducerConfig{MaxRetries: 3}, zap.NewNop())

	results := bus.PublishBatch(context.Background(), []events.DomainEvent{
		events.New(events.UserCreated, "user-1"),
		events.New(events.UserCreated, "user-2"),
	})

	require.Len(t, results, 2)
	assert.NoError(t, results[0])
	assert.ErrorIs(t, results[1], producer.ErrTransport)
}
