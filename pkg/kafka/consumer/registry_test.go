package consumer

import (
	"context"
	"testing"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockHandler is a configurable test implementation of EventHandler.
type mockHandler struct {
	name       string
	topics     []string
	handleFunc func(ctx context.Context, event events.DomainEvent) error
	calls      int
}

func (m *mockHandler) Name() string     { return m.name }
func (m *mockHandler) Topics() []string { return m.topics }

func (m *mockHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	m.calls++
	if m.handleFunc != nil {
		return m.handleFunc(ctx, event)
	}
	return nil
}

func TestRegistry(t *testing.T) {
	t.Run("preserves registration order per topic", func(t *testing.T) {
		reg := newRegistry(zap.NewNop())
		reg.add(&mockHandler{name: "first", topics: []string{events.TopicUserEvents}})
		reg.add(&mockHandler{name: "second", topics: []string{events.TopicUserEvents, events.TopicAuthEvents}})
		reg.add(&mockHandler{name: "third", topics: []string{events.TopicAuthEvents}})

		matched := reg.handlersFor(events.TopicUserEvents)
		require.Len(t, matched, 2)
		assert.Equal(t, "first", matched[0].Name())
		assert.Equal(t, "second", matched[1].Name())

		matched = reg.handlersFor(events.TopicAuthEvents)
		require.Len(t, matched, 2)
		assert.Equal(t, "second", matched[0].Name())
		assert.Equal(t, "third", matched[1].Name())
	})

	t.Run("returns nothing for an unclaimed topic", func(t *testing.T) {
		reg := newRegistry(zap.NewNop())
		reg.add(&mockHandler{name: "audit", topics: []string{events.TopicUserEvents}})

		assert.Empty(t, reg.handlersFor(events.TopicSystemEvents))
	})

	t.Run("duplicate names are allowed and both handlers run", func(t *testing.T) {
		reg := newRegistry(zap.NewNop())
		reg.add(&mockHandler{name: "audit", topics: []string{events.TopicUserEvents}})
		reg.add(&mockHandler{name: "audit", topics: []string{events.TopicUserEvents}})

		assert.Len(t, reg.handlersFor(events.TopicUserEvents), 2)
	})

	t.Run("topic union deduplicates in first appearance order", func(t *testing.T) {
		reg := newRegistry(zap.NewNop())
		reg.add(&mockHandler{name: "a", topics: []string{events.TopicUserEvents, events.TopicAuthEvents}})
		reg.add(&mockHandler{name: "b", topics: []string{events.TopicAuthEvents, events.TopicTransactionEvents}})

		assert.Equal(t,
			[]string{events.TopicUserEvents, events.TopicAuthEvents, events.TopicTransactionEvents},
			reg.topics())
	})
}
