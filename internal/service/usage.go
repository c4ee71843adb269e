package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/tenant"
	"github.com/Strob0t/HeadlineForge/internal/domain/usage"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
)

// UsageStore is the persistence needed by UsageService.
type UsageStore interface {
	database.TenantStore
	database.UsageStore
}

// UsageService reports consumption and mirrors ledger counts into the
// relational usage meters.
type UsageService struct {
	ledger *QuotaLedger
	store  UsageStore
}

// NewUsageService creates a UsageService.
func NewUsageService(ledger *QuotaLedger, store UsageStore) *UsageService {
	return &UsageService{ledger: ledger, store: store}
}

// Summary returns the tenant's plan and current-period consumption.
func (s *UsageService) Summary(ctx context.Context, tenantID string) (*usage.Summary, error) {
	plan := tenant.FreePlan()
	sub, err := s.store.GetActiveSubscription(ctx, tenantID)
	switch {
	case err == nil && sub.Entitles():
		plan = sub.Plan
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load subscription: %w", err)
	}

	limit, err := s.ledger.Limit(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	consumed, err := s.ledger.Usage(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	p := s.ledger.Period()
	info := usage.NewUsageInfo(consumed, limit)
	info.Period = p.ID()
	info.LastResetAt = p.Start
	if m, err := s.store.GetUsageMeter(ctx, tenantID); err == nil && m.Period == p.ID() {
		info.LastResetAt = m.LastResetAt
	}

	return &usage.Summary{
		Plan:  usage.PlanInfo{Name: plan.Name, Limit: limit},
		Usage: info,
	}, nil
}

// SyncMeters copies every tenant's current count into usage_meters. A new
// period resets last_reset_at. Per-tenant failures are logged and the sync
// continues; the first one is returned.
func (s *UsageService) SyncMeters(ctx context.Context) (int, error) {
	ids, err := s.store.ListTenantIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}

	p := s.ledger.Period()
	var firstErr error
	synced := 0
	for _, id := range ids {
		if err := s.syncMeter(ctx, id, p); err != nil {
			slog.WarnContext(ctx, "meter sync failed", "tenant_id", id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		synced++
	}
	return synced, firstErr
}

func (s *UsageService) syncMeter(ctx context.Context, tenantID string, p usage.Period) error {
	count, err := s.ledger.Usage(ctx, tenantID)
	if err != nil {
		return err
	}

	m := &usage.Meter{TenantID: tenantID, Count: count, Period: p.ID(), LastResetAt: p.Start}
	prev, err := s.store.GetUsageMeter(ctx, tenantID)
	switch {
	case err == nil && prev.Period == p.ID():
		m.LastResetAt = prev.LastResetAt
		// The counter can lag a restart of an in-process backend.
		m.Count = max(m.Count, prev.Count)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("load meter: %w", err)
	}
	return s.store.UpsertUsageMeter(ctx, m)
}

// RunMeterSync calls SyncMeters every interval until ctx is canceled.
func (s *UsageService) RunMeterSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SyncMeters(ctx)
			if err != nil {
				slog.Warn("meter sync incomplete", "synced", n, "error", err)
				continue
			}
			slog.Debug("meter sync done", "synced", n)
		}
	}
}
