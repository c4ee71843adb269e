package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Strob0t/HeadlineForge/internal/domain/headline"
)

func (s *Store) CreateHeadline(ctx context.Context, h *headline.Headline) error {
	breakdown, err := json.Marshal(h.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO headlines (tenant_id, content, niche, style, score, breakdown)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		h.TenantID, h.Content, h.Niche, string(h.Style), h.Score, breakdown,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("create headline: %w", err)
	}
	return nil
}

func (s *Store) GetHeadline(ctx context.Context, tenantID, id string) (*headline.Headline, error) {
	var h headline.Headline
	var style string
	var breakdown []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, content, niche, style, score, breakdown, created_at
		FROM headlines WHERE id = $1 AND tenant_id = $2`, id, tenantID,
	).Scan(&h.ID, &h.TenantID, &h.Content, &h.Niche, &style, &h.Score, &breakdown, &h.CreatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get headline %s", id)
	}
	h.Style = headline.Style(style)
	if err := json.Unmarshal(breakdown, &h.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	return &h, nil
}

func (s *Store) CreateHeadlineVersion(ctx context.Context, v *headline.Version) error {
	breakdown, err := json.Marshal(v.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO headline_versions (headline_id, content, version_label, score, breakdown)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		v.HeadlineID, v.Content, nullIfEmpty(v.Label), v.Score, breakdown,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("create headline version: %w", err)
	}
	return nil
}
