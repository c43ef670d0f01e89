package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/talent-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventUserLoggedIn    EventType = "user_logged_in"
	EventLoginFailed     EventType = "login_failed"
	EventSessionRenewed  EventType = "session_renewed"
	EventAccessReissued  EventType = "access_reissued"
	EventRefreshRejected EventType = "refresh_rejected"
)

// AuthEventTypes lists every auth event, in a stable order.
var AuthEventTypes = []EventType{
	EventUserRegistered,
	EventUserLoggedIn,
	EventLoginFailed,
	EventSessionRenewed,
	EventAccessReissued,
	EventRefreshRejected,
}

// Actor identifies who triggered an event. UserID is nil when the caller
// could not be identified, as on a failed login for an unknown email.
type Actor struct {
	UserID         *int64      `json:"user_id,omitempty"`
	Role           domain.Role `json:"role,omitempty"`
	OrganizationID *int64      `json:"organization_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an id and timestamp on an event.
func New(eventType EventType, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ActorFromUser builds an actor from a user record.
func ActorFromUser(user *domain.User) Actor {
	if user == nil {
		return Actor{}
	}
	id := user.ID
	return Actor{UserID: &id, Role: user.Role, OrganizationID: user.OrganizationID}
}

// LoginFailedPayload payload. Reason is for server-side logs only and never
// reaches the client.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// RefreshRejectedPayload payload.
type RefreshRejectedPayload struct {
	Reason string `json:"reason"`
}

// SessionRenewedPayload payload.
type SessionRenewedPayload struct {
	PreviousExpiry time.Time `json:"previous_expiry"`
}
