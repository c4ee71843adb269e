package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Strob0t/HeadlineForge/internal/domain/audit"
)

func (s *Store) InsertAuditEvent(ctx context.Context, e *audit.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	if e.Payload == nil {
		payload = []byte("{}")
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO audit_events (tenant_id, actor, event_type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.TenantID, nullIfEmpty(e.Actor), e.Type, payload,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
