// Package events defines the domain event envelope, the closed event
// taxonomy and the topic routing shared by producers and consumers.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSchemaVersion is stamped into metadata unless overridden.
const DefaultSchemaVersion = "1.0"

// EventMetadata carries tracing context alongside an event. It never
// affects routing.
type EventMetadata struct {
	CorrelationID string `json:"correlation_id,omitempty"`
	CausationID   string `json:"causation_id,omitempty"`
	ActorID       string `json:"actor_id,omitempty"`
	IPAddress     string `json:"ip_address,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	Source        string `json:"source"`
	SchemaVersion string `json:"schema_version"`
}

// DomainEvent is an immutable fact about something that happened to an
// entity. Once built it is never mutated; treat every field as
// read-only.
type DomainEvent struct {
	ID         string         `json:"id"`
	EventType  EventType      `json:"event_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload"`
	Metadata   EventMetadata  `json:"metadata"`
	// Timestamp is milliseconds since epoch, set at construction.
	Timestamp int64 `json:"timestamp"`
	// Version is an advisory per-entity ordering counter.
	Version int `json:"version"`
}

// New creates a DomainEvent with a fresh id, the current timestamp,
// version 1 and default metadata. Use a Builder for anything beyond the
// required fields.
func New(eventType EventType, entityID string) DomainEvent {
	return DomainEvent{
		ID:         uuid.NewString(),
		EventType:  eventType,
		EntityType: eventType.EntityType(),
		EntityID:   entityID,
		Metadata:   EventMetadata{SchemaVersion: DefaultSchemaVersion},
		Timestamp:  time.Now().UnixMilli(),
		Version:    1,
	}
}

// Topic returns the topic the event is routed to.
func (e DomainEvent) Topic() string {
	return e.EventType.Topic()
}

// PartitionKey returns the broker partition key. It is always the
// entity id: all events for one entity land in the same partition, so
// per-entity order is preserved. No order is guaranteed across
// different entities or topics.
func (e DomainEvent) PartitionKey() string {
	return e.EntityID
}

// OccurredAt returns the construction timestamp as time.Time.
func (e DomainEvent) OccurredAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}
