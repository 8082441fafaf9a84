package consumer

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// MessageTracer links consumed messages and dead-letter publishes into
// the trace started by the producer side.
type MessageTracer interface {
	// ExtractContext pulls the trace context out of Kafka headers.
	ExtractContext(ctx context.Context, message *kafka.Message) context.Context

	// StartConsumerSpan opens a span covering one message dispatch.
	StartConsumerSpan(ctx context.Context, message *kafka.Message) (context.Context, trace.Span)

	// StartDLQSpan opens a span covering a dead-letter publish.
	StartDLQSpan(ctx context.Context, message *kafka.Message, dlqTopic string) (context.Context, trace.Span)

	// InjectContext writes the trace context into message headers.
	InjectContext(ctx context.Context, message *kafka.Message)
}

type messageTracer struct {
	tracer trace.Tracer
}

func newMessageTracer(tp trace.TracerProvider) MessageTracer {
	return &messageTracer{tracer: tp.Tracer("kafka-consumer")}
}

func (t *messageTracer) ExtractContext(ctx context.Context, message *kafka.Message) context.Context {
	if len(message.Headers) == 0 {
		return ctx
	}

	headersMap := make(map[string]string, len(message.Headers))
	for _, header := range message.Headers {
		headersMap[header.Key] = string(header.Value)
	}

	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headersMap))
}

func (t *messageTracer) StartConsumerSpan(ctx context.Context, message *kafka.Message) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topicOf(message)),
			attribute.Int("messaging.partition", int(message.TopicPartition.Partition)),
			attribute.Int64("messaging.offset", int64(message.TopicPartition.Offset)),
			attribute.String("messaging.message.key", string(message.Key)),
		),
	)
}

func (t *messageTracer) StartDLQSpan(ctx context.Context, message *kafka.Message, dlqTopic string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "kafka.send_to_dlq",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", dlqTopic),
			attribute.String("messaging.source.topic", topicOf(message)),
			attribute.Int("messaging.source.partition", int(message.TopicPartition.Partition)),
			attribute.Int64("messaging.source.offset", int64(message.TopicPartition.Offset)),
		),
	)
}

func (t *messageTracer) InjectContext(ctx context.Context, message *kafka.Message) {
	headersMap := make(map[string]string, len(message.Headers))
	for _, header := range message.Headers {
		headersMap[header.Key] = string(header.Value)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headersMap))

	message.Headers = message.Headers[:0]
	for key, value := range headersMap {
		message.Headers = append(message.Headers, kafka.Header{Key: key, Value: []byte(value)})
	}
}

func topicOf(message *kafka.Message) string {
	if message.TopicPartition.Topic == nil {
		return ""
	}
	return *message.TopicPartition.Topic
}
