package consumer

import (
	"context"
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/core/logger"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// reader polls the broker and feeds raw messages to the dispatcher.
// Poll errors are classified: timeouts are silent, transient broker
// trouble backs off with throttled logging, fatal errors stop the
// consumer.
type reader struct {
	client      kafkaConsumer
	messages    chan<- *kafka.Message
	pollTimeout time.Duration
	throttler   *logger.Throttler
	log         *zap.Logger
}

func newReader(client kafkaConsumer, messages chan<- *kafka.Message, pollTimeout time.Duration, log *zap.Logger) *reader {
	return &reader{
		client:      client,
		messages:    messages,
		pollTimeout: pollTimeout,
		throttler:   logger.NewThrottler(log, time.Minute),
		log:         log,
	}
}

func (r *reader) run(ctx context.Context) error {
	r.log.Info("reader started")
	defer r.log.Info("reader stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := r.client.ReadMessage(r.pollTimeout)
		if err != nil {
			readErr := classifyReadError(err)

			if readErr.isTimeout() {
				continue
			}

			if readErr.isFatal() {
				r.log.Error("fatal kafka error, stopping reader", zap.Error(readErr.err))
				return readErr
			}

			r.throttler.Warn(readErr.throttleKey, readErr.description, zap.Error(readErr.err))
			wait(ctx, readErr.retryAfter)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case r.messages <- msg:
		}
	}
}
