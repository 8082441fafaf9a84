package events

import "fmt"

// Domain groups event kinds by the part of the application they describe.
type Domain string

const (
	DomainUser        Domain = "user"
	DomainAuth        Domain = "auth"
	DomainTransaction Domain = "transaction"
	DomainCategory    Domain = "category"
	DomainSystem      Domain = "system"
)

// EventType identifies one kind of domain event. The taxonomy is closed:
// adding a new domain means extending the constant sets below and the
// switches in Topic and EntityType, nothing else.
type EventType struct {
	Domain Domain `json:"domain"`
	Kind   string `json:"type"`
}

// User domain kinds.
const (
	KindUserCreated         = "created"
	KindUserUpdated         = "updated"
	KindUserDeleted         = "deleted"
	KindUserPasswordChanged = "password_changed"
)

// Auth domain kinds.
const (
	KindAuthSignedIn       = "signed_in"
	KindAuthSignedOut      = "signed_out"
	KindAuthSignInFailed   = "sign_in_failed"
	KindAuthTokenRefreshed = "token_refreshed"
)

// Transaction domain kinds.
const (
	KindTransactionCreated = "created"
	KindTransactionPosted  = "posted"
	KindTransactionUpdated = "updated"
	KindTransactionDeleted = "deleted"
)

// Category domain kinds.
const (
	KindCategoryCreated = "created"
	KindCategoryUpdated = "updated"
	KindCategoryDeleted = "deleted"
)

// System domain kinds.
const (
	KindSystemStartup  = "startup"
	KindSystemShutdown = "shutdown"
	KindSystemError    = "error"
)

// Canonical event types. Application code publishes these values; the
// consumer matches on them when dispatching.
var (
	UserCreated         = EventType{DomainUser, KindUserCreated}
	UserUpdated         = EventType{DomainUser, KindUserUpdated}
	UserDeleted         = EventType{DomainUser, KindUserDeleted}
	UserPasswordChanged = EventType{DomainUser, KindUserPasswordChanged}

	AuthSignedIn       = EventType{DomainAuth, KindAuthSignedIn}
	AuthSignedOut      = EventType{DomainAuth, KindAuthSignedOut}
	AuthSignInFailed   = EventType{DomainAuth, KindAuthSignInFailed}
	AuthTokenRefreshed = EventType{DomainAuth, KindAuthTokenRefreshed}

	TransactionCreated = EventType{DomainTransaction, KindTransactionCreated}
	TransactionPosted  = EventType{DomainTransaction, KindTransactionPosted}
	TransactionUpdated = EventType{DomainTransaction, KindTransactionUpdated}
	TransactionDeleted = EventType{DomainTransaction, KindTransactionDeleted}

	CategoryCreated = EventType{DomainCategory, KindCategoryCreated}
	CategoryUpdated = EventType{DomainCategory, KindCategoryUpdated}
	CategoryDeleted = EventType{DomainCategory, KindCategoryDeleted}

	SystemStartup  = EventType{DomainSystem, KindSystemStartup}
	SystemShutdown = EventType{DomainSystem, KindSystemShutdown}
	SystemError    = EventType{DomainSystem, KindSystemError}
)

var kindsByDomain = map[Domain][]string{
	DomainUser:        {KindUserCreated, KindUserUpdated, KindUserDeleted, KindUserPasswordChanged},
	DomainAuth:        {KindAuthSignedIn, KindAuthSignedOut, KindAuthSignInFailed, KindAuthTokenRefreshed},
	DomainTransaction: {KindTransactionCreated, KindTransactionPosted, KindTransactionUpdated, KindTransactionDeleted},
	DomainCategory:    {KindCategoryCreated, KindCategoryUpdated, KindCategoryDeleted},
	DomainSystem:      {KindSystemStartup, KindSystemShutdown, KindSystemError},
}

// Validate reports whether the event type belongs to the closed taxonomy.
func (t EventType) Validate() error {
	kinds, ok := kindsByDomain[t.Domain]
	if !ok {
		return fmt.Errorf("unknown event domain: %q", t.Domain)
	}
	for _, k := range kinds {
		if k == t.Kind {
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q for domain %q", t.Kind, t.Domain)
}

// Topic returns the Kafka topic for the event type. Deterministic: the
// same type always maps to the same topic.
func (t EventType) Topic() string {
	switch t.Domain {
	case DomainUser:
		return TopicUserEvents
	case DomainAuth:
		return TopicAuthEvents
	case DomainTransaction:
		return TopicTransactionEvents
	case DomainCategory:
		return TopicCategoryEvents
	case DomainSystem:
		return TopicSystemEvents
	default:
		return ""
	}
}

// EntityType returns the label of the entity the event describes. Auth
// events describe the user the session belongs to.
func (t EventType) EntityType() string {
	switch t.Domain {
	case DomainUser, DomainAuth:
		return "user"
	case DomainTransaction:
		return "transaction"
	case DomainCategory:
		return "category"
	case DomainSystem:
		return "system"
	default:
		return ""
	}
}

func (t EventType) String() string {
	return string(t.Domain) + "." + t.Kind
}
