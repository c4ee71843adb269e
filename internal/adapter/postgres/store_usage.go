package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/HeadlineForge/internal/domain/usage"
)

func (s *Store) InsertUsageLog(ctx context.Context, l *usage.Log) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO usage_logs (tenant_id, api_key_id, path, method, status_code, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		l.TenantID, nullIfEmpty(l.CredentialID), l.Path, l.Method, l.StatusCode, l.ResponseTimeMS,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}
	return nil
}

func (s *Store) GetUsageMeter(ctx context.Context, tenantID string) (*usage.Meter, error) {
	var m usage.Meter
	err := s.pool.QueryRow(ctx, `
		SELECT tenant_id, monthly_requests_count, period, last_reset_at
		FROM usage_meters WHERE tenant_id = $1`, tenantID,
	).Scan(&m.TenantID, &m.Count, &m.Period, &m.LastResetAt)
	if err != nil {
		return nil, notFoundWrap(err, "get usage meter %s", tenantID)
	}
	return &m, nil
}

func (s *Store) UpsertUsageMeter(ctx context.Context, m *usage.Meter) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO usage_meters (tenant_id, monthly_requests_count, period, last_reset_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4::timestamptz, now()), now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			monthly_requests_count = EXCLUDED.monthly_requests_count,
			period = EXCLUDED.period,
			last_reset_at = EXCLUDED.last_reset_at,
			updated_at = now()`,
		m.TenantID, m.Count, m.Period, nullTime(m.LastResetAt),
	)
	if err != nil {
		return fmt.Errorf("upsert usage meter %s: %w", m.TenantID, err)
	}
	return nil
}
