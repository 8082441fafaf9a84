package consumer

import (
	"context"
	"errors"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// offsetStorer stores a message offset for the next auto-commit.
type offsetStorer interface {
	StoreMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
}

// dispatcher drains the message channel and fans each event out to the
// registered handlers sequentially, in registration order.
//
// The offset is stored only after every handler reached a terminal
// outcome: success, skip, or a dead-lettered failure. A crash before
// that point redelivers the message, which gives at-least-once
// delivery.
type dispatcher struct {
	messages <-chan *kafka.Message
	registry *registry
	store    offsetStorer
	dlq      DeadLetterRouter
	retry    *retryExecutor
	tracer   MessageTracer
	log      *zap.Logger
}

func newDispatcher(
	messages <-chan *kafka.Message,
	reg *registry,
	store offsetStorer,
	dlq DeadLetterRouter,
	retry *retryExecutor,
	tracer MessageTracer,
	log *zap.Logger,
) *dispatcher {
	return &dispatcher{
		messages: messages,
		registry: reg,
		store:    store,
		dlq:      dlq,
		retry:    retry,
		tracer:   tracer,
		log:      log,
	}
}

func (d *dispatcher) run(ctx context.Context) error {
	d.log.Info("dispatcher started")
	defer d.log.Info("dispatcher stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-d.messages:
			if ctx.Err() != nil {
				return nil
			}
			d.dispatch(ctx, msg)
		}
	}
}

func (d *dispatcher) dispatch(ctx context.Context, message *kafka.Message) {
	ctx = d.tracer.ExtractContext(ctx, message)
	ctx, span := d.tracer.StartConsumerSpan(ctx, message)
	defer span.End()

	event, err := events.Unmarshal(message.Value)
	if err != nil {
		// Retrying cannot fix malformed bytes: dead-letter and move on.
		span.RecordError(err)
		span.SetStatus(codes.Error, "undecodable message")
		d.log.Error("failed to decode message, routing to dead-letter topic",
			d.messageFields(message, zap.Error(err))...)
		d.dlq.Route(ctx, message, "", Permanent("decoding event: %v", err))
		d.storeOffset(message)
		return
	}

	handlers := d.registry.handlersFor(topicOf(message))
	if len(handlers) == 0 {
		d.log.Debug("no handlers for topic, skipping event",
			d.messageFields(message, zap.String("event_id", event.ID))...)
		d.storeOffset(message)
		return
	}

	// Every handler sees the event: a terminal failure dead-letters for
	// that handler alone and the fan-out moves on. The offset is stored
	// once, after all handlers reached a terminal outcome.
	failed := false
	for _, handler := range handlers {
		interrupted, deadLettered := d.invoke(ctx, handler, event, message, span)
		if interrupted {
			return
		}
		failed = failed || deadLettered
	}

	if !failed {
		span.SetStatus(codes.Ok, "event processed")
	}
	d.storeOffset(message)
}

// invoke runs one handler with retries. interrupted means shutdown cut
// the handler off before a terminal outcome, so the message must stay
// uncommitted and be redelivered. deadLettered means the handler failed
// terminally and its delivery went to the dead-letter topic.
func (d *dispatcher) invoke(ctx context.Context, handler EventHandler, event events.DomainEvent, message *kafka.Message, span trace.Span) (interrupted, deadLettered bool) {
	err := d.retry.execute(ctx, func(ctx context.Context) error {
		return handler.Handle(ctx, event)
	})

	switch {
	case err == nil:
		return false, false

	case errors.Is(err, ErrSkip):
		d.log.Info("handler skipped event",
			d.messageFields(message,
				zap.String("handler", handler.Name()),
				zap.String("event_id", event.ID))...)
		return false, false

	case ctx.Err() != nil:
		// Only the dispatcher's own context signals shutdown. A context
		// error surfacing from the handler (a database deadline, say) is
		// an ordinary failure and falls through to the default case.
		d.log.Warn("handler interrupted by shutdown, event will be redelivered",
			d.messageFields(message,
				zap.String("handler", handler.Name()),
				zap.String("event_id", event.ID))...)
		return true, false

	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed terminally")
		d.log.Error("handler failed terminally, routing its delivery to dead-letter topic",
			d.messageFields(message,
				zap.String("handler", handler.Name()),
				zap.String("event_id", event.ID),
				zap.Error(err))...)
		d.dlq.Route(ctx, message, handler.Name(), err)
		return false, true
	}
}

func (d *dispatcher) storeOffset(message *kafka.Message) {
	if _, err := d.store.StoreMessage(message); err != nil {
		d.log.Error("failed to store offset", d.messageFields(message, zap.Error(err))...)
	}
}

func (d *dispatcher) messageFields(message *kafka.Message, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("topic", topicOf(message)),
		zap.String("key", string(message.Key)),
		zap.Int32("partition", message.TopicPartition.Partition),
		zap.Int64("offset", int64(message.TopicPartition.Offset)),
	}
	return append(fields, extra...)
}
