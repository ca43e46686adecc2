// Package audit records authentication events for later review.
package audit

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType names an authentication event
type EventType string

const (
	EventRegister        EventType = "auth.register"
	EventRegisterFailure EventType = "auth.register.failure"
	EventLoginSuccess    EventType = "auth.login.success"
	EventLoginFailure    EventType = "auth.login.failure"
	EventRefreshSuccess  EventType = "auth.refresh.success"
	EventRefreshFailure  EventType = "auth.refresh.failure"
	EventLogout          EventType = "auth.logout"
	EventSessionRevoked  EventType = "auth.session.revoked"
)

// Event is a single audit entry. Reason carries the internal failure cause
// and must never contain a credential.
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	PrincipalID string         `json:"principalId,omitempty"`
	Email       string         `json:"email,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// NewEvent stamps a new event with a ULID and the given time
func NewEvent(eventType EventType, now time.Time) *Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Event{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Type:      eventType,
		CreatedAt: now,
	}
}

func (e *Event) WithPrincipal(principalID string) *Event {
	e.PrincipalID = principalID
	return e
}

func (e *Event) WithEmail(email string) *Event {
	e.Email = email
	return e
}

func (e *Event) WithReason(err error) *Event {
	if err != nil {
		e.Reason = err.Error()
	}
	return e
}
