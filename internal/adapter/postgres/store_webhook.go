package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/HeadlineForge/internal/domain/webhook"
)

func (s *Store) ListActiveWebhooks(ctx context.Context, tenantID, eventType string) ([]webhook.Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, target_url, events, secret, is_active, created_at
		FROM webhooks
		WHERE tenant_id = $1 AND is_active AND $2 = ANY(events)`, tenantID, eventType)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var subs []webhook.Subscription
	for rows.Next() {
		var w webhook.Subscription
		if err := rows.Scan(&w.ID, &w.TenantID, &w.TargetURL, &w.Events, &w.Secret, &w.Active, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		w.Events = pgTextArray(w.Events)
		subs = append(subs, w)
	}
	return subs, rows.Err()
}
