package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Delivery headers set on every outbound webhook request.
const (
	HeaderEvent     = "X-Webhook-Event"
	HeaderSignature = "X-Webhook-Signature"
	HeaderID        = "X-Webhook-ID"
)

// Event is an ephemeral domain event. It is never persisted by the dispatcher.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent builds an event with a fresh id and the current UTC time.
func NewEvent(eventType string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ForDelivery returns a copy of e with a fresh id, one per target endpoint.
func (e Event) ForDelivery() Event {
	e.ID = uuid.NewString()
	return e
}
