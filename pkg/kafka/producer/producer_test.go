package producer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockKafkaClient is a test implementation of kafkaProducer.
type mockKafkaClient struct {
	produceFunc func(msg *kafka.Message, deliveryChan chan kafka.Event) error
	produced    []*kafka.Message
	closed      bool
}

func (m *mockKafkaClient) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	m.produced = append(m.produced, msg)
	if m.produceFunc != nil {
		return m.produceFunc(msg, deliveryChan)
	}
	// Default: report successful delivery.
	report := *msg
	deliveryChan <- &report
	return nil
}

func (m *mockKafkaClient) Close() { m.closed = true }

func testProducerConfig() config.ProducerConfig {
	return config.ProducerConfig{
		MaxRetries:      3,
		InitialBackoff:  1 * time.Millisecond,
		MaxBackoff:      5 * time.Millisecond,
		DeliveryTimeout: 100 * time.Millisecond,
	}
}

func deliveryFailure(code kafka.ErrorCode) func(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	return func(msg *kafka.Message, deliveryChan chan kafka.Event) error {
		report := *msg
		report.TopicPartition.Error = kafka.NewError(code, "broker unavailable", false)
		deliveryChan <- &report
		return nil
	}
}

func TestProducer_Publish(t *testing.T) {
	t.Run("routes event to its topic keyed by entity id", func(t *testing.T) {
		mock := &mockKafkaClient{}
		p := newProducer(mock, testProducerConfig(), zap.NewNop())

		event := events.NewBuilder(events.UserCreated, "user-1").
			Payload(map[string]any{"email": "a@b.c"}).
			Build()

		err := p.Publish(context.Background(), event)

		require.NoError(t, err)
		require.Len(t, mock.produced, 1)
		msg := mock.produced[0]
		assert.Equal(t, events.TopicUserEvents, *msg.TopicPartition.Topic)
		assert.Equal(t, []byte("user-1"), msg.Key)

		decoded, err := events.Unmarshal(msg.Value)
		require.NoError(t, err)
		assert.Equal(t, event, decoded)
	})

	t.Run("returns serialization error for invalid event type", func(t *testing.T) {
		mock := &mockKafkaClient{}
		p := newProducer(mock, testProducerConfig(), zap.NewNop())

		event := events.New(events.UserCreated, "user-1")
		event.EventType.Domain = "warehouse"

		err := p.Publish(context.Background(), event)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSerialization)
		assert.Empty(t, mock.produced, "nothing should reach the broker")
	})

	t.Run("returns transport error when enqueue fails", func(t *testing.T) {
		mock := &mockKafkaClient{
			produceFunc: func(msg *kafka.Message, deliveryChan chan kafka.Event) error {
				return kafka.NewError(kafka.ErrQueueFull, "queue full", false)
			},
		}
		p := newProducer(mock, testProducerConfig(), zap.NewNop())

		err := p.Publish(context.Background(), events.New(events.UserCreated, "user-1"))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("returns transport error on failed delivery report", func(t *testing.T) {
		mock := &mockKafkaClient{produceFunc: deliveryFailure(kafka.ErrBrokerNotAvailable)}
		p := newProducer(mock, testProducerConfig(), zap.NewNop())

		err := p.Publish(context.Background(), events.New(events.UserCreated, "user-1"))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("returns transport error when delivery report never arrives", func(t *testing.T) {
		mock := &mockKafkaClient{
			produceFunc: func(msg *kafka.Message, deliveryChan chan kafka.Event) error {
				return nil // enqueued, but no report
			},
		}
		conf := testProducerConfig()
		conf.DeliveryTimeout = 20 * time.Millisecond
		p := newProducer(mock, conf, zap.NewNop())

		err := p.Publish(context.Background(), events.New(events.UserCreated, "user-1"))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestProducer_PublishWithRetry(t *testing.T) {
	t.Run("retries transport failures until success", func(t *testing.T) {
		var attempts atomic.Int32
		mock := &mockKafkaClient{}
		mock.produceFunc = func(msg *kafka.Message, deliveryChan chan kafka.Event) error {
			if attempts.Add(1) < 3 {
				return kafka.NewError(kafka.ErrTransport, "connection refused", false)
			}
			report := *msg
			deliveryChan <- &report
			return nil
		}
		p := newProducer(mock, testProducerConfig(), zap.NewNop())

		err := p.PublishWithRetry(context.Background(), events.New(events.UserCreated, "user-1"), 5)

		require.NoError(t, err)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("returns last error when budget is exhausted", func(t *testing.T) {
		var attempts atomic.Int32
		mock := &mockKafkaClient{
			produceFunc: func(msg *kafka.Message, deliveryChan chan kafka.Event) error {
				attempts.Add(1)
				return kafka.NewError(kafka.ErrAllBrokersDown, "all brokers down", false)
			},
		}
		p := newProducer(mock, testProducerConfig(), zap.NewNop())

		err := p.PublishWithRetry(context.Background(), events.New(events.UserCreated, "user-1"), 2)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
		assert.Equal(t, int32(3), attempts.Load(), "initial attempt plus two retries")
	})

	t.Run("never retries serialization failures", func(t *testing.T) {
		mock := &mockKafkaClient{}
		p := newProducer(mock, testProducerConfig(), zap.NewNop())

		event := events.New(events.UserCreated, "user-1")
		event.EventType.Kind = "bogus"

		err := p.PublishWithRetry(context.Background(), event, 5)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSerialization)
		assert.Empty(t, mock.produced)
	})
}

func TestProducer_PublishBatch(t *testing.T) {
	t.Run("results are index-aligned and independent", func(t *testing.T) {
		var call atomic.Int32
		mock := &mockKafkaClient{}
		mock.produceFunc = func(msg *kafka.Message, deliveryChan chan kafka.Event) error {
			if call.Add(1) == 2 {
				return kafka.NewError(kafka.ErrTransport, "connection reset", false)
			}
			report := *msg
			deliveryChan <- &report
			return nil
		}
		p := newProducer(mock, testProducerConfig(), zap.NewNop())

		batch := []events.DomainEvent{
			events.New(events.UserCreated, "user-1"),
			events.New(events.UserCreated, "user-2"),
			events.New(events.UserCreated, "user-3"),
		}

		results := p.PublishBatch(context.Background(), batch)

		require.Len(t, results, 3)
		assert.NoError(t, results[0])
		assert.ErrorIs(t, results[1], ErrTransport)
		assert.NoError(t, results[2])
	})

	t.Run("empty batch yields empty results", func(t *testing.T) {
		p := newProducer(&mockKafkaClient{}, testProducerConfig(), zap.NewNop())
		assert.Empty(t, p.PublishBatch(context.Background(), nil))
	})
}

func TestProducer_PublishRaw(t *testing.T) {
	mock := &mockKafkaClient{}
	p := newProducer(mock, testProducerConfig(), zap.NewNop())

	headers := []kafka.Header{{Key: "dlq.error", Value: []byte("boom")}}
	err := p.PublishRaw(context.Background(), events.TopicDeadLetter, []byte("user-1"), []byte(`{}`), headers)

	require.NoError(t, err)
	require.Len(t, mock.produced, 1)
	assert.Equal(t, events.TopicDeadLetter, *mock.produced[0].TopicPartition.Topic)
	assert.Equal(t, headers, mock.produced[0].Headers)
}

func TestProducer_Close(t *testing.T) {
	mock := &mockKafkaClient{}
	p := newProducer(mock, testProducerConfig(), zap.NewNop())
	p.Close()
	assert.True(t, mock.closed)
}
