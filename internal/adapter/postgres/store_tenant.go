package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/tenant"
)

// --- Tenant CRUD ---

func (s *Store) CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tenants (name, slug) VALUES ($1, $2)
		 RETURNING id, name, slug, created_at`,
		req.Name, req.Slug,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create tenant %s: %w", req.Slug, domain.ErrConflict)
		}
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return &t, nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, slug, created_at FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	return &t, nil
}

func (s *Store) ListTenantIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan tenant ids: %w", err)
	}
	return ids, nil
}

// --- Plans & subscriptions ---

func (s *Store) GetPlanByName(ctx context.Context, name string) (*tenant.Plan, error) {
	var p tenant.Plan
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, monthly_request_limit, max_api_keys FROM plans WHERE lower(name) = lower($1)`, name,
	).Scan(&p.ID, &p.Name, &p.MonthlyRequestLimit, &p.MaxAPIKeys)
	if err != nil {
		return nil, notFoundWrap(err, "get plan %s", name)
	}
	return &p, nil
}

func (s *Store) GetActiveSubscription(ctx context.Context, tenantID string) (*tenant.Subscription, error) {
	var sub tenant.Subscription
	err := s.pool.QueryRow(ctx, `
		SELECT s.id, s.tenant_id, s.status, s.current_period_start, s.current_period_end,
		       p.id, p.name, p.monthly_request_limit, p.max_api_keys
		FROM subscriptions s JOIN plans p ON p.id = s.plan_id
		WHERE s.tenant_id = $1 AND s.status IN ('active', 'trialing')
		ORDER BY s.created_at DESC LIMIT 1`, tenantID,
	).Scan(&sub.ID, &sub.TenantID, &sub.Status, &sub.PeriodStart, &sub.PeriodEnd,
		&sub.Plan.ID, &sub.Plan.Name, &sub.Plan.MonthlyRequestLimit, &sub.Plan.MaxAPIKeys)
	if err != nil {
		return nil, notFoundWrap(err, "get subscription for tenant %s", tenantID)
	}
	return &sub, nil
}

func (s *Store) ReplaceSubscription(ctx context.Context, sub *tenant.Subscription) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace subscription: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE subscriptions SET status = 'canceled'
		 WHERE tenant_id = $1 AND status IN ('active', 'trialing')`, sub.TenantID,
	); err != nil {
		return fmt.Errorf("cancel subscriptions: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO subscriptions (tenant_id, plan_id, status, current_period_start, current_period_end)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		sub.TenantID, sub.Plan.ID, sub.Status, sub.PeriodStart, sub.PeriodEnd,
	).Scan(&sub.ID)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit subscription: %w", err)
	}
	return nil
}
