package events

// Builder assembles a DomainEvent before it is frozen. Every setter
// works on the builder's private copy; Build hands out the final
// immutable envelope by value.
type Builder struct {
	event DomainEvent
}

// NewBuilder starts a builder seeded like New: fresh id, current
// timestamp, version 1, default metadata.
func NewBuilder(eventType EventType, entityID string) *Builder {
	return &Builder{event: New(eventType, entityID)}
}

// Payload sets the opaque structured payload.
func (b *Builder) Payload(payload map[string]any) *Builder {
	b.event.Payload = payload
	return b
}

// Metadata replaces the whole metadata block. An empty schema version
// is backfilled with the default so the required field survives.
func (b *Builder) Metadata(m EventMetadata) *Builder {
	if m.SchemaVersion == "" {
		m.SchemaVersion = DefaultSchemaVersion
	}
	b.event.Metadata = m
	return b
}

// Source sets the producing service name.
func (b *Builder) Source(source string) *Builder {
	b.event.Metadata.Source = source
	return b
}

// Actor sets the acting user id.
func (b *Builder) Actor(actorID string) *Builder {
	b.event.Metadata.ActorID = actorID
	return b
}

// CorrelationID ties the event to a request chain.
func (b *Builder) CorrelationID(id string) *Builder {
	b.event.Metadata.CorrelationID = id
	return b
}

// CausationID references the event that caused this one.
func (b *Builder) CausationID(id string) *Builder {
	b.event.Metadata.CausationID = id
	return b
}

// Request attaches request-scoped context (request id, caller ip,
// user agent).
func (b *Builder) Request(requestID, ipAddress, userAgent string) *Builder {
	b.event.Metadata.RequestID = requestID
	b.event.Metadata.IPAddress = ipAddress
	b.event.Metadata.UserAgent = userAgent
	return b
}

// Version overrides the advisory per-entity version counter.
func (b *Builder) Version(v int) *Builder {
	b.event.Version = v
	return b
}

// Build freezes and returns the event.
func (b *Builder) Build() DomainEvent {
	return b.event
}
