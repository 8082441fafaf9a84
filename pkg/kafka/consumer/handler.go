package consumer

import (
	"context"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
)

// EventHandler processes domain events delivered from Kafka.
//
// Handle is called sequentially, in registration order, for every event
// whose topic is in Topics(). Returning an error wrapping ErrTemporary
// triggers retries; ErrPermanent routes the event to the dead-letter
// topic immediately; any other error is treated as temporary.
type EventHandler interface {
	// Name identifies the handler in logs and dead-letter records.
	Name() string

	// Topics lists the topics this handler wants events from.
	Topics() []string

	// Handle processes one event. It must be idempotent: delivery is
	// at-least-once and a crash between processing and offset commit
	// redelivers the event.
	Handle(ctx context.Context, event events.DomainEvent) error
}
