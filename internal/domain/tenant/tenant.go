// Package tenant defines the tenant, plan and subscription domain models.
package tenant

import "time"

// FreeTierLimit is the monthly request limit for tenants without a subscription.
const FreeTierLimit = 100

// FreePlanName is reported for tenants without a subscription.
const FreePlanName = "Free"

// Tenant represents an isolated billing unit.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest holds the fields required to create a new tenant.
type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Plan describes a subscription tier.
type Plan struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	MonthlyRequestLimit int64  `json:"monthly_request_limit"`
	MaxAPIKeys          int    `json:"max_api_keys"`
}

// FreePlan is the implicit plan of tenants without an active subscription.
func FreePlan() Plan {
	return Plan{Name: FreePlanName, MonthlyRequestLimit: FreeTierLimit, MaxAPIKeys: 3}
}

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

// Subscription links a tenant to a plan for a billing period [PeriodStart, PeriodEnd).
type Subscription struct {
	ID          string             `json:"id"`
	TenantID    string             `json:"tenant_id"`
	Plan        Plan               `json:"plan"`
	Status      SubscriptionStatus `json:"status"`
	PeriodStart time.Time          `json:"current_period_start"`
	PeriodEnd   time.Time          `json:"current_period_end"`
}

// Entitles reports whether the subscription grants its plan's limits.
func (s *Subscription) Entitles() bool {
	return s.Status == StatusActive || s.Status == StatusTrialing
}
