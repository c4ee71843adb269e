package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/audit"
	"github.com/Strob0t/HeadlineForge/internal/domain/tenant"
	"github.com/Strob0t/HeadlineForge/internal/domain/usage"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
)

// TenantStore is the persistence needed by TenantService.
type TenantStore interface {
	database.TenantStore
	database.AuditStore
}

// TenantService manages tenants and their plan subscriptions.
type TenantService struct {
	store  TenantStore
	ledger *QuotaLedger
	now    func() time.Time
}

// NewTenantService creates a TenantService. ledger may be nil; when set,
// plan changes evict the cached limit.
func NewTenantService(store TenantStore, ledger *QuotaLedger) *TenantService {
	return &TenantService{store: store, ledger: ledger, now: time.Now}
}

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// Create validates and creates a new tenant.
func (s *TenantService) Create(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: tenant name is required", domain.ErrValidation)
	}
	if !slugRegex.MatchString(req.Slug) {
		return nil, fmt.Errorf("%w: invalid slug %q: must be 3-64 lowercase alphanumeric characters or hyphens", domain.ErrValidation, req.Slug)
	}
	return s.store.CreateTenant(ctx, req)
}

// Get returns a tenant by ID.
func (s *TenantService) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.store.GetTenant(ctx, id)
}

// SetPlan replaces the tenant's active subscription with one on planName
// covering the current calendar month.
func (s *TenantService) SetPlan(ctx context.Context, tenantID, planName string) (*tenant.Subscription, error) {
	if _, err := s.store.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	plan, err := s.store.GetPlanByName(ctx, planName)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", planName, err)
	}

	p := usage.PeriodAt(s.now())
	sub := &tenant.Subscription{
		TenantID:    tenantID,
		Plan:        *plan,
		Status:      tenant.StatusActive,
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
	}
	if err := s.store.ReplaceSubscription(ctx, sub); err != nil {
		return nil, err
	}
	if s.ledger != nil {
		s.ledger.InvalidateLimit(ctx, tenantID)
	}

	e := &audit.Event{
		TenantID: tenantID,
		Actor:    actorFromContext(ctx),
		Type:     audit.EventPlanSet,
		Payload:  map[string]any{"plan": plan.Name, "subscription_id": sub.ID},
	}
	if err := s.store.InsertAuditEvent(ctx, e); err != nil {
		slog.WarnContext(ctx, "audit insert failed", "event", e.Type, "error", err)
	}
	return sub, nil
}
