package events

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes the event into the JSON wire envelope. An event type
// outside the closed taxonomy is a construction bug and fails here.
func Marshal(e DomainEvent) ([]byte, error) {
	if err := e.EventType.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event type: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", e.ID, err)
	}
	return data, nil
}

// Unmarshal decodes a wire envelope back into a DomainEvent. Records
// that do not carry a well-formed envelope are rejected so the consumer
// can dead-letter them without retrying.
func Unmarshal(data []byte) (DomainEvent, error) {
	var e DomainEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return DomainEvent{}, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}
	if e.ID == "" {
		return DomainEvent{}, fmt.Errorf("event envelope is missing id")
	}
	if err := e.EventType.Validate(); err != nil {
		return DomainEvent{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return e, nil
}
