package consumer

import (
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

type readErrorKind int

const (
	readErrorTimeout readErrorKind = iota
	readErrorFatal
	readErrorTopicNotFound
	readErrorBrokerConnection
	readErrorLeaderElection
	readErrorRetriable
	readErrorUnknown
)

// readError classifies a poll failure so the reader knows whether to
// keep polling, back off, or stop.
type readError struct {
	err         error
	kind        readErrorKind
	throttleKey string
	description string
	retryAfter  time.Duration
}

func (e *readError) Error() string {
	if e.description != "" {
		return fmt.Sprintf("%s: %v", e.description, e.err)
	}
	return e.err.Error()
}

func (e *readError) Unwrap() error {
	return e.err
}

func (e *readError) isFatal() bool {
	return e.kind == readErrorFatal
}

func (e *readError) isTimeout() bool {
	return e.kind == readErrorTimeout
}

func classifyReadError(err error) *readError {
	var kafkaErr kafka.Error
	if !errors.As(err, &kafkaErr) {
		return &readError{
			err:         err,
			kind:        readErrorUnknown,
			throttleKey: "non_kafka_error",
			description: "unexpected poll error",
			retryAfter:  time.Second,
		}
	}

	if kafkaErr.IsTimeout() {
		return &readError{err: err, kind: readErrorTimeout}
	}

	if kafkaErr.IsFatal() {
		return &readError{
			err:         err,
			kind:        readErrorFatal,
			description: "fatal kafka error, consumer is no longer operable",
		}
	}

	switch kafkaErr.Code() {
	case kafka.ErrUnknownTopicOrPart:
		return &readError{
			err:         err,
			kind:        readErrorTopicNotFound,
			throttleKey: "topic_not_found",
			description: "topic not available, waiting for topic creation",
			retryAfter:  10 * time.Second,
		}

	case kafka.ErrTransport, kafka.ErrAllBrokersDown, kafka.ErrNetworkException:
		return &readError{
			err:         err,
			kind:        readErrorBrokerConnection,
			throttleKey: "broker_connection",
			description: "broker connection issue, retrying",
			retryAfter:  5 * time.Second,
		}

	case kafka.ErrLeaderNotAvailable, kafka.ErrNotLeaderForPartition:
		return &readError{
			err:         err,
			kind:        readErrorLeaderElection,
			throttleKey: "leader_election",
			description: "partition leader changing, retrying",
			retryAfter:  2 * time.Second,
		}
	}

	if kafkaErr.IsRetriable() {
		return &readError{
			err:         err,
			kind:        readErrorRetriable,
			throttleKey: "retriable_error",
			description: "retriable kafka error, retrying",
			retryAfter:  time.Second,
		}
	}

	return &readError{
		err:         err,
		kind:        readErrorUnknown,
		throttleKey: "unknown_error",
		description: "unknown kafka error",
		retryAfter:  time.Second,
	}
}
