// Package audit persists every domain event into MongoDB. It doubles
// as the reference handler implementation: idempotent via upsert by
// event id, so at-least-once redelivery never duplicates a record.
package audit

import (
	"context"
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/consumer"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is where audit records land.
const CollectionName = "audit_events"

// auditCollection is the subset of *mongo.Collection the handler needs.
type auditCollection interface {
	UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
}

// record is the persisted shape of one audit entry.
type record struct {
	EventID    string              `bson:"_id"`
	Domain     string              `bson:"domain"`
	Kind       string              `bson:"kind"`
	EntityType string              `bson:"entity_type"`
	EntityID   string              `bson:"entity_id"`
	Payload    map[string]any      `bson:"payload,omitempty"`
	Metadata   events.EventMetadata `bson:"metadata"`
	OccurredAt time.Time           `bson:"occurred_at"`
	RecordedAt time.Time           `bson:"recorded_at"`
}

// Handler writes one audit record per consumed event.
type Handler struct {
	collection auditCollection
	log        *zap.Logger
}

func NewHandler(collection auditCollection, log *zap.Logger) *Handler {
	return &Handler{
		collection: collection,
		log:        log.With(zap.String("handler", "audit-log")),
	}
}

func (h *Handler) Name() string {
	return "audit-log"
}

// Topics subscribes the handler to every domain topic, dead-letter
// excluded.
func (h *Handler) Topics() []string {
	return events.DomainTopics()
}

func (h *Handler) Handle(ctx context.Context, event events.DomainEvent) error {
	rec := record{
		EventID:    event.ID,
		Domain:     string(event.EventType.Domain),
		Kind:       event.EventType.Kind,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Payload:    event.Payload,
		Metadata:   event.Metadata,
		OccurredAt: event.OccurredAt(),
		RecordedAt: time.Now().UTC(),
	}

	// Upsert keyed by event id: redelivered events overwrite their own
	// record instead of inserting a duplicate.
	_, err := h.collection.UpdateOne(ctx,
		bson.M{"_id": event.ID},
		bson.M{"$set": rec},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		// Mongo being down is the common failure here; let the retry
		// budget absorb it.
		return consumer.Temporary("persisting audit record: %v", err)
	}

	h.log.Debug("audit record persisted",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.EventType.String()))
	return nil
}
