// Package audit records the registration lifecycle as append-only events.
// Events always land in the store; when a Kafka producer is configured they
// are additionally published for downstream consumers.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ActionRegistrationCreated = "registration_created"
	ActionRegistrationDeleted = "registration_deleted"
	ActionStepAdvanced        = "step_advanced"
	ActionPaymentPoll         = "payment_poll"
	ActionSessionRotated      = "session_rotated"
)

// Event is one audit record, keyed to the session whose registration it
// describes.
type Event struct {
	ID        string            `json:"id"`
	SessionID string            `json:"sessionId"`
	Action    string            `json:"action"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Store is the append-only persistence behind the publisher.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID string) ([]Event, error)
}

// NewEvent stamps identity and time onto an event.
func NewEvent(sessionID, action string, details map[string]string) Event {
	return Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	}
}
