// Package webhook defines tenant webhook subscriptions.
package webhook

import (
	"slices"
	"time"
)

// Subscription is a tenant-registered delivery target.
type Subscription struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	TargetURL string    `json:"target_url"`
	Events    []string  `json:"events"`
	Secret    string    `json:"-"` //nolint:gosec // G117: signing secret column, never serialized
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscribes reports whether the subscription is active and listens for eventType.
func (s *Subscription) Subscribes(eventType string) bool {
	return s.Active && slices.Contains(s.Events, eventType)
}
