package audit

import (
	"github.com/Sokol111/wallet-eventbus/pkg/core/mongo"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/consumer"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewAuditModule registers the audit handler with the consumer. The
// mongo module must also be in the graph.
func NewAuditModule() fx.Option {
	return consumer.AsEventHandler(func(m mongo.Mongo, log *zap.Logger) *Handler {
		return NewHandler(m.Collection(CollectionName), log)
	})
}
