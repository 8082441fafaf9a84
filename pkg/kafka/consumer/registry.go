package consumer

import (
	"go.uber.org/zap"
)

// registry keeps handlers in registration order. Order matters: the
// dispatch loop invokes handlers for a topic in exactly this order.
type registry struct {
	handlers []EventHandler
	names    map[string]struct{}
	log      *zap.Logger
}

func newRegistry(log *zap.Logger) *registry {
	return &registry{
		names: make(map[string]struct{}),
		log:   log,
	}
}

// add registers a handler. Names are not required to be unique; a
// duplicate only degrades log and dead-letter attribution, so it gets
// a warning and both handlers run.
func (r *registry) add(h EventHandler) {
	name := h.Name()
	if _, exists := r.names[name]; exists {
		r.log.Warn("duplicate handler name, dead-letter attribution will be ambiguous",
			zap.String("handler", name))
	}

	r.names[name] = struct{}{}
	r.handlers = append(r.handlers, h)
	r.log.Info("handler registered",
		zap.String("handler", name),
		zap.Strings("topics", h.Topics()))
}

// handlersFor returns the handlers subscribed to topic, in registration
// order.
func (r *registry) handlersFor(topic string) []EventHandler {
	var matched []EventHandler
	for _, h := range r.handlers {
		for _, t := range h.Topics() {
			if t == topic {
				matched = append(matched, h)
				break
			}
		}
	}
	return matched
}

// topics returns the union of all registered handlers' topics, in first
// appearance order.
func (r *registry) topics() []string {
	seen := make(map[string]struct{})
	var topics []string
	for _, h := range r.handlers {
		for _, t := range h.Topics() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			topics = append(topics, t)
		}
	}
	return topics
}

func (r *registry) empty() bool {
	return len(r.handlers) == 0
}
