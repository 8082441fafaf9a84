package admin

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockTopicCreator is a test implementation of topicCreator.
type mockTopicCreator struct {
	createFunc func(ctx context.Context, topics []kafka.TopicSpecification) ([]kafka.TopicResult, error)
	specs      []kafka.TopicSpecification
	closed     bool
}

func (m *mockTopicCreator) CreateTopics(ctx context.Context, topics []kafka.TopicSpecification, options ...kafka.CreateTopicsAdminOption) ([]kafka.TopicResult, error) {
	m.specs = topics
	if m.createFunc != nil {
		return m.createFunc(ctx, topics)
	}
	results := make([]kafka.TopicResult, len(topics))
	for i, spec := range topics {
		results[i] = kafka.TopicResult{Topic: spec.Topic}
	}
	return results, nil
}

func (m *mockTopicCreator) Close() { m.closed = true }

func TestEnsureTopics(t *testing.T) {
	t.Run("creates every event topic with standard settings", func(t *testing.T) {
		mock := &mockTopicCreator{}
		a := newAdmin(mock, zap.NewNop())

		require.NoError(t, a.EnsureTopics(context.Background()))

		require.Len(t, mock.specs, len(events.AllTopics()))
		byTopic := make(map[string]kafka.TopicSpecification)
		for _, spec := range mock.specs {
			byTopic[spec.Topic] = spec
		}

		for _, topic := range events.AllTopics() {
			spec, ok := byTopic[topic]
			require.True(t, ok, "missing spec for %s", topic)
			assert.Equal(t, NumPartitions, spec.NumPartitions)
			assert.Equal(t, strconv.FormatInt(RetentionPeriod.Milliseconds(), 10), spec.Config["retention.ms"])
		}

		_, hasDLQ := byTopic[events.TopicDeadLetter]
		assert.True(t, hasDLQ, "dead-letter topic must be provisioned")
	})

	t.Run("tolerates topics that already exist", func(t *testing.T) {
		mock := &mockTopicCreator{
			createFunc: func(ctx context.Context, topics []kafka.TopicSpecification) ([]kafka.TopicResult, error) {
				results := make([]kafka.TopicResult, len(topics))
				for i, spec := range topics {
					results[i] = kafka.TopicResult{
						Topic: spec.Topic,
						Error: kafka.NewError(kafka.ErrTopicAlreadyExists, "exists", false),
					}
				}
				return results, nil
			},
		}
		a := newAdmin(mock, zap.NewNop())

		assert.NoError(t, a.EnsureTopics(context.Background()))
	})

	t.Run("fails on any other per-topic error", func(t *testing.T) {
		mock := &mockTopicCreator{
			createFunc: func(ctx context.Context, topics []kafka.TopicSpecification) ([]kafka.TopicResult, error) {
				results := make([]kafka.TopicResult, len(topics))
				for i, spec := range topics {
					results[i] = kafka.TopicResult{Topic: spec.Topic}
				}
				results[0].Error = kafka.NewError(kafka.ErrPolicyViolation, "policy", false)
				return results, nil
			},
		}
		a := newAdmin(mock, zap.NewNop())

		assert.Error(t, a.EnsureTopics(context.Background()))
	})

	t.Run("surfaces request failures", func(t *testing.T) {
		mock := &mockTopicCreator{
			createFunc: func(ctx context.Context, topics []kafka.TopicSpecification) ([]kafka.TopicResult, error) {
				return nil, errors.New("brokers unreachable")
			},
		}
		a := newAdmin(mock, zap.NewNop())

		assert.Error(t, a.EnsureTopics(context.Background()))
	})

	t.Run("close releases the client", func(t *testing.T) {
		mock := &mockTopicCreator{}
		a := newAdmin(mock, zap.NewNop())
		a.Close()
		assert.True(t, mock.closed)
	})
}
