// Package database defines the database store port (interfaces).
//
// All tenant-scoped methods take the tenant id explicitly; implementations
// must filter by it so one tenant can never observe another's rows.
package database

import (
	"context"

	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/domain/audit"
	"github.com/Strob0t/HeadlineForge/internal/domain/experiment"
	"github.com/Strob0t/HeadlineForge/internal/domain/headline"
	"github.com/Strob0t/HeadlineForge/internal/domain/tenant"
	"github.com/Strob0t/HeadlineForge/internal/domain/usage"
	"github.com/Strob0t/HeadlineForge/internal/domain/webhook"
)

// CredentialStore persists API keys.
type CredentialStore interface {
	// CreateAPIKey inserts key unless the tenant already holds maxActive
	// non-revoked keys, in which case it returns apikey.ErrTooManyKeys and
	// inserts nothing.
	CreateAPIKey(ctx context.Context, key *apikey.APIKey, maxActive int) error

	// GetActiveAPIKeyByHash returns the active, non-revoked key with the
	// given hash or domain.ErrNotFound.
	GetActiveAPIKeyByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error)

	ListAPIKeys(ctx context.Context, tenantID string) ([]apikey.APIKey, error)

	// RevokeAPIKey soft-deletes a key and returns the revoked record.
	RevokeAPIKey(ctx context.Context, tenantID, id string) (*apikey.APIKey, error)
}

// TenantStore persists tenants, plans and subscriptions.
type TenantStore interface {
	CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	ListTenantIDs(ctx context.Context) ([]string, error)
	GetPlanByName(ctx context.Context, name string) (*tenant.Plan, error)

	// GetActiveSubscription returns the tenant's active subscription joined
	// with its plan, or domain.ErrNotFound.
	GetActiveSubscription(ctx context.Context, tenantID string) (*tenant.Subscription, error)

	// ReplaceSubscription cancels any active subscription of the tenant and
	// activates a new one for planID, atomically.
	ReplaceSubscription(ctx context.Context, sub *tenant.Subscription) error
}

// UsageStore persists usage logs and meters.
type UsageStore interface {
	InsertUsageLog(ctx context.Context, log *usage.Log) error
	GetUsageMeter(ctx context.Context, tenantID string) (*usage.Meter, error)
	UpsertUsageMeter(ctx context.Context, meter *usage.Meter) error
}

// HeadlineStore persists generated headlines and their versions.
type HeadlineStore interface {
	CreateHeadline(ctx context.Context, h *headline.Headline) error
	GetHeadline(ctx context.Context, tenantID, id string) (*headline.Headline, error)
	CreateHeadlineVersion(ctx context.Context, v *headline.Version) error
}

// WebhookStore reads webhook subscriptions.
type WebhookStore interface {
	// ListActiveWebhooks returns active subscriptions of the tenant whose
	// event set contains eventType.
	ListActiveWebhooks(ctx context.Context, tenantID, eventType string) ([]webhook.Subscription, error)
}

// ExperimentStore persists experiments and their counters.
type ExperimentStore interface {
	CreateExperiment(ctx context.Context, e *experiment.Experiment) error

	// IncrementVariationMetric atomically adds one to the metric column of a
	// variation owned by the tenant's experiment.
	IncrementVariationMetric(ctx context.Context, tenantID, experimentID, variationID string, metric experiment.Metric) error
}

// AuditStore persists audit events.
type AuditStore interface {
	InsertAuditEvent(ctx context.Context, e *audit.Event) error
}

// Store is the full persistence port.
type Store interface {
	CredentialStore
	TenantStore
	UsageStore
	HeadlineStore
	WebhookStore
	ExperimentStore
	AuditStore

	Ping(ctx context.Context) error
}
