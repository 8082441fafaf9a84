package eventbus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/admin"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/consumer"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/producer"
	"github.com/Sokol111/wallet-eventbus/pkg/testutil/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func skipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := os.Stat("/var/run/docker.sock"); err != nil && os.Getenv("DOCKER_HOST") == "" {
		t.Skip("docker is not available")
	}
}

func integrationConfig(brokers string) config.Config {
	return config.Config{
		Brokers: brokers,
		Producer: config.ProducerConfig{
			MaxRetries:      3,
			InitialBackoff:  200 * time.Millisecond,
			MaxBackoff:      2 * time.Second,
			DeliveryTimeout: 15 * time.Second,
		},
		Consumer: config.ConsumerConfig{
			GroupID:           "integration-test",
			AutoOffsetReset:   "earliest",
			MaxRetryAttempts:  2,
			InitialBackoff:    100 * time.Millisecond,
			MaxBackoff:        time.Second,
			PollTimeout:       time.Second,
			ChannelBufferSize: 100,
			DLQTopic:          events.TopicDeadLetter,
			DLQMaxRetries:     3,
		},
	}
}

func TestEventBusEndToEnd(t *testing.T) {
	skipWithoutDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	kafkaContainer, err := container.StartKafkaContainer(ctx)
	require.NoError(t, err)
	defer kafkaContainer.Terminate(context.Background()) //nolint:errcheck

	log := zap.NewNop()
	conf := integrationConfig(kafkaContainer.Brokers)

	a, err := admin.New(conf, log)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.EnsureTopics(ctx))

	p, err := producer.New(conf, log)
	require.NoError(t, err)
	defer p.Close()

	bus := New(p, conf.Producer, log)

	delivered := make(chan events.DomainEvent, 64)
	capture := &captureHandler{
		topics:    []string{events.TopicUserEvents},
		delivered: delivered,
	}

	c, err := consumer.NewBuilder(conf, p, log).
		Register(capture).
		Subscribe()
	require.NoError(t, err)
	require.NoError(t, c.Start())
	defer c.Stop() //nolint:errcheck

	event := events.NewBuilder(events.UserCreated, "user-e2e").
		Payload(map[string]any{"email": "e2e@example.com"}).
		Source("integration-test").
		Build()

	require.NoError(t, bus.PublishReliable(ctx, event))

	select {
	case received := <-delivered:
		assert.Equal(t, event.ID, received.ID)
		assert.Equal(t, event.EventType, received.EventType)
		assert.Equal(t, "user-e2e", received.EntityID)
		assert.Equal(t, "e2e@example.com", received.Payload["email"])
	case <-time.After(90 * time.Second):
		t.Fatal("event never reached the handler")
	}

	t.Run("per-entity publish order is preserved", func(t *testing.T) {
		const total = 10

		batch := make([]events.DomainEvent, total)
		for i := range batch {
			batch[i] = events.NewBuilder(events.UserUpdated, "user-ordered").
				Payload(map[string]any{"seq": float64(i)}).
				Build()
		}
		for i, err := range bus.PublishBatch(ctx, batch) {
			require.NoError(t, err, "event %d failed to publish", i)
		}

		var got []float64
		deadline := time.After(90 * time.Second)
		for len(got) < total {
			select {
			case received := <-delivered:
				if received.EntityID != "user-ordered" {
					continue
				}
				got = append(got, received.Payload["seq"].(float64))
			case <-deadline:
				t.Fatalf("received %d of %d events", len(got), total)
			}
		}

		for i, seq := range got {
			assert.Equal(t, float64(i), seq, "event %d arrived out of publish order", i)
		}
	})
}

type captureHandler struct {
	topics    []string
	delivered chan events.DomainEvent
}

func (h *captureHandler) Name() string     { return "capture" }
func (h *captureHandler) Topics() []string { return h.topics }

func (h *captureHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	select {
	case h.delivered <- event:
	default:
	}
	return nil
}
