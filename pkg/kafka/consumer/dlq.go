package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/kafka/producer"
	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DeadLetterRouter publishes events that failed terminally to the
// dead-letter topic, wrapped in a record that preserves the original
// bytes and explains the failure.
//
// Routing never surfaces an error to the dispatch loop: if the
// dead-letter publish itself fails after retries, the failure is logged
// and the offset is still committed. Losing the dead-letter copy is
// preferred over wedging the partition.
type DeadLetterRouter interface {
	Route(ctx context.Context, message *kafka.Message, failingHandler string, cause error)
}

// deadLetterRecord is the JSON value written to the dead-letter topic.
// OriginalEvent holds the consumed message bytes untouched so the event
// can be replayed after the handler is fixed.
type deadLetterRecord struct {
	OriginalEvent  json.RawMessage `json:"original_event"`
	FailureReason  string          `json:"failure_reason"`
	FailingHandler string          `json:"failing_handler,omitempty"`
	TopicOrigin    string          `json:"topic_origin"`
	Partition      int32           `json:"partition"`
	Offset         int64           `json:"offset"`
	FailedAt       time.Time       `json:"failed_at"`
}

type deadLetterRouter struct {
	producer   producer.Producer
	topic      string
	maxRetries uint64
	tracer     MessageTracer
	log        *zap.Logger
}

func newDeadLetterRouter(p producer.Producer, topic string, maxRetries uint64, tracer MessageTracer, log *zap.Logger) DeadLetterRouter {
	return &deadLetterRouter{
		producer:   p,
		topic:      topic,
		maxRetries: maxRetries,
		tracer:     tracer,
		log:        log,
	}
}

func (r *deadLetterRouter) Route(ctx context.Context, message *kafka.Message, failingHandler string, cause error) {
	ctx, span := r.tracer.StartDLQSpan(ctx, message, r.topic)
	defer span.End()

	value, err := r.buildRecord(message, failingHandler, cause)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build dead-letter record")
		r.log.Error("failed to build dead-letter record",
			zap.String("key", string(message.Key)),
			zap.Error(err))
		return
	}

	headers := r.buildHeaders(message, failingHandler, cause)
	carrier := &kafka.Message{Headers: headers}
	r.tracer.InjectContext(ctx, carrier)

	publish := func() error {
		return r.producer.PublishRaw(ctx, r.topic, message.Key, value, carrier.Headers)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), ctx)
	if err := backoff.Retry(publish, bo); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish to dead-letter topic")
		r.log.Error("failed to publish to dead-letter topic, event is lost",
			zap.String("dlq_topic", r.topic),
			zap.String("origin_topic", topicOf(message)),
			zap.String("key", string(message.Key)),
			zap.Int64("offset", int64(message.TopicPartition.Offset)),
			zap.Error(err))
		return
	}

	span.SetStatus(codes.Ok, "event routed to dead-letter topic")
	r.log.Info("event routed to dead-letter topic",
		zap.String("dlq_topic", r.topic),
		zap.String("origin_topic", topicOf(message)),
		zap.String("failing_handler", failingHandler),
		zap.Int32("origin_partition", message.TopicPartition.Partition),
		zap.Int64("origin_offset", int64(message.TopicPartition.Offset)))
}

func (r *deadLetterRouter) buildRecord(message *kafka.Message, failingHandler string, cause error) ([]byte, error) {
	original := json.RawMessage(message.Value)
	if !json.Valid(message.Value) {
		// Malformed payloads still need to survive the trip, so encode
		// the raw bytes as a JSON string.
		encoded, err := json.Marshal(string(message.Value))
		if err != nil {
			return nil, fmt.Errorf("encoding malformed payload: %w", err)
		}
		original = encoded
	}

	record := deadLetterRecord{
		OriginalEvent:  original,
		FailureReason:  cause.Error(),
		FailingHandler: failingHandler,
		TopicOrigin:    topicOf(message),
		Partition:      message.TopicPartition.Partition,
		Offset:         int64(message.TopicPartition.Offset),
		FailedAt:       time.Now().UTC(),
	}
	return json.Marshal(record)
}

func (r *deadLetterRouter) buildHeaders(message *kafka.Message, failingHandler string, cause error) []kafka.Header {
	headers := append([]kafka.Header(nil), message.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original.topic", Value: []byte(topicOf(message))},
		kafka.Header{Key: "dlq.original.partition", Value: []byte(fmt.Sprintf("%d", message.TopicPartition.Partition))},
		kafka.Header{Key: "dlq.original.offset", Value: []byte(fmt.Sprintf("%d", message.TopicPartition.Offset))},
		kafka.Header{Key: "dlq.error", Value: []byte(cause.Error())},
		kafka.Header{Key: "dlq.timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	)
	if failingHandler != "" {
		headers = append(headers, kafka.Header{Key: "dlq.handler", Value: []byte(failingHandler)})
	}
	return headers
}
