package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const (
	probeInterval     = 500 * time.Millisecond
	metadataTimeoutMs = 5000
)

// metadataProvider is the subset of *kafka.Producer the readiness probe
// needs.
type metadataProvider interface {
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
}

// awaitBrokers blocks until the cluster answers a metadata request with
// at least one broker, the timeout elapses, or ctx ends. With
// failOnError false an unreachable cluster only logs a warning, so the
// producer can come up before its brokers do.
func awaitBrokers(ctx context.Context, client metadataProvider, log *zap.Logger, timeoutSec int, failOnError bool) error {
	log.Info("checking broker availability", zap.Int("timeout_seconds", timeoutSec))

	if timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
		defer cancel()
	}

	err := probeUntilReachable(ctx, client)
	switch {
	case err == nil:
		log.Info("producer ready")
		return nil
	case failOnError:
		return fmt.Errorf("brokers not reachable: %w", err)
	default:
		log.Warn("brokers not reachable, starting anyway", zap.Error(err))
		return nil
	}
}

func probeUntilReachable(ctx context.Context, client metadataProvider) error {
	if brokersReachable(client) {
		return nil
	}

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if brokersReachable(client) {
				return nil
			}
		}
	}
}

func brokersReachable(client metadataProvider) bool {
	meta, err := client.GetMetadata(nil, false, metadataTimeoutMs)
	return err == nil && len(meta.Brokers) > 0
}
