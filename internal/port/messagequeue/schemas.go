package messagequeue

import (
	"encoding/json"
	"time"
)

// EventPayload is the schema for events.<type> messages.
type EventPayload struct {
	TenantID  string          `json:"tenant_id"`
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
