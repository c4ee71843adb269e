package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/tenant"
	"github.com/Strob0t/HeadlineForge/internal/domain/usage"
	"github.com/Strob0t/HeadlineForge/internal/port/cache"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
)

// QuotaConfig tunes the ledger. Zero values fall back to defaults.
type QuotaConfig struct {
	DefaultLimit  int64
	LimitCacheTTL time.Duration
	CounterGrace  time.Duration
}

// Decision is the outcome of a metered admission.
type Decision struct {
	Count    int64
	Limit    int64
	Admitted bool
}

// Remaining is the number of calls left in the period, never negative.
func (d Decision) Remaining() int64 {
	return max(0, d.Limit-d.Count)
}

// QuotaLedger counts calls per tenant per calendar month. Counts live in
// an atomic cache counter; limits come from the active plan.
type QuotaLedger struct {
	counter      cache.Counter
	subs         database.TenantStore
	limits       *ReadThrough[int64]
	defaultLimit int64
	grace        time.Duration
	now          func() time.Time
}

// NewQuotaLedger creates a ledger counting on counter and caching plan
// limits in limitCache.
func NewQuotaLedger(counter cache.Counter, limitCache cache.Cache, subs database.TenantStore, cfg QuotaConfig) *QuotaLedger {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = tenant.FreeTierLimit
	}
	if cfg.LimitCacheTTL <= 0 {
		cfg.LimitCacheTTL = 24 * time.Hour
	}
	if cfg.CounterGrace <= 0 {
		cfg.CounterGrace = 24 * time.Hour
	}
	return &QuotaLedger{
		counter:      counter,
		subs:         subs,
		limits:       NewReadThrough[int64](limitCache, cfg.LimitCacheTTL, "plan_limit"),
		defaultLimit: cfg.DefaultLimit,
		grace:        cfg.CounterGrace,
		now:          time.Now,
	}
}

// CounterKey returns the counter key for tenantID in period p.
func CounterKey(tenantID string, p usage.Period) string {
	return "usage:" + tenantID + ":" + p.ID()
}

// LimitKey returns the plan limit cache key for tenantID.
func LimitKey(tenantID string) string {
	return "plan:limit:" + tenantID
}

// Period returns the current billing period.
func (l *QuotaLedger) Period() usage.Period {
	return usage.PeriodAt(l.now())
}

// IncrementAndGet atomically adds one call to the current period and
// returns the new count.
func (l *QuotaLedger) IncrementAndGet(ctx context.Context, tenantID string) (int64, error) {
	now := l.now()
	p := usage.PeriodAt(now)
	n, err := l.counter.Incr(ctx, CounterKey(tenantID, p), p.Remaining(now)+l.grace)
	if err != nil {
		return 0, fmt.Errorf("increment usage %s: %w", tenantID, err)
	}
	return n, nil
}

// Usage returns the current period's count without incrementing it.
func (l *QuotaLedger) Usage(ctx context.Context, tenantID string) (int64, error) {
	n, err := l.counter.Value(ctx, CounterKey(tenantID, l.Period()))
	if err != nil {
		return 0, fmt.Errorf("read usage %s: %w", tenantID, err)
	}
	return n, nil
}

// Limit returns the monthly request limit of tenantID's active plan, or
// the default limit when none entitles it.
func (l *QuotaLedger) Limit(ctx context.Context, tenantID string) (int64, error) {
	limit, _, err := l.limits.Load(ctx, LimitKey(tenantID), func(ctx context.Context) (int64, bool, error) {
		sub, err := l.subs.GetActiveSubscription(ctx, tenantID)
		if errors.Is(err, domain.ErrNotFound) {
			return l.defaultLimit, true, nil
		}
		if err != nil {
			return 0, false, err
		}
		if !sub.Entitles() || sub.Plan.MonthlyRequestLimit <= 0 {
			return l.defaultLimit, true, nil
		}
		return sub.Plan.MonthlyRequestLimit, true, nil
	})
	if err != nil {
		return 0, fmt.Errorf("load limit %s: %w", tenantID, err)
	}
	return limit, nil
}

// InvalidateLimit drops the cached plan limit after a plan change.
func (l *QuotaLedger) InvalidateLimit(ctx context.Context, tenantID string) {
	l.limits.Invalidate(ctx, LimitKey(tenantID))
}

// Admit counts the call and then compares against the limit. A rejected
// call stays counted.
func (l *QuotaLedger) Admit(ctx context.Context, tenantID string) (Decision, error) {
	count, err := l.IncrementAndGet(ctx, tenantID)
	if err != nil {
		return Decision{}, err
	}
	limit, err := l.Limit(ctx, tenantID)
	if err != nil {
		return Decision{Count: count}, err
	}
	return Decision{Count: count, Limit: limit, Admitted: count <= limit}, nil
}
