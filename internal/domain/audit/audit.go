// Package audit defines tenant-scoped audit events.
package audit

import "time"

// Audit event types.
const (
	EventKeyCreated = "api_key.created"
	EventKeyRevoked = "api_key.revoked"
	EventPlanSet    = "subscription.plan_set"
)

// Event records a security-relevant action taken on behalf of a tenant.
type Event struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	Actor     string         `json:"actor,omitempty"`
	Type      string         `json:"event_type"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
