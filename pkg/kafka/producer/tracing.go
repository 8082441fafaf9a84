package producer

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// injectTraceContext writes the active trace context into the message
// headers so consumers can continue the span.
func injectTraceContext(ctx context.Context, msg *kafka.Message) {
	headersMap := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		headersMap[header.Key] = string(header.Value)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headersMap))

	msg.Headers = msg.Headers[:0]
	for key, value := range headersMap {
		msg.Headers = append(msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
	}
}
