package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
)

const apiKeyColumns = `id, tenant_id, name, prefix, key_hash, is_active, last_used_at, created_at, revoked_at`

func scanAPIKey(row scannable) (apikey.APIKey, error) {
	var k apikey.APIKey
	var lastUsed, revoked *time.Time
	err := row.Scan(&k.ID, &k.TenantID, &k.Name, &k.Prefix, &k.KeyHash, &k.Active, &lastUsed, &k.CreatedAt, &revoked)
	k.LastUsedAt = timeOrZero(lastUsed)
	k.RevokedAt = timeOrZero(revoked)
	return k, err
}

// CreateAPIKey locks the tenant row so concurrent creations for the same
// tenant serialize on the active-key count.
func (s *Store) CreateAPIKey(ctx context.Context, key *apikey.APIKey, maxActive int) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin create api key: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var tenantID string
	if err := tx.QueryRow(ctx, `SELECT id FROM tenants WHERE id = $1 FOR UPDATE`, key.TenantID).Scan(&tenantID); err != nil {
		return notFoundWrap(err, "lock tenant %s", key.TenantID)
	}

	var active int
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM api_keys WHERE tenant_id = $1 AND revoked_at IS NULL`, key.TenantID,
	).Scan(&active); err != nil {
		return fmt.Errorf("count api keys: %w", err)
	}
	if active >= maxActive {
		return apikey.ErrTooManyKeys
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO api_keys (tenant_id, name, prefix, key_hash, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at`,
		key.TenantID, key.Name, key.Prefix, key.KeyHash,
	).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	key.Active = true

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit api key: %w", err)
	}
	return nil
}

func (s *Store) GetActiveAPIKeyByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys WHERE key_hash = $1 AND is_active AND revoked_at IS NULL`, keyHash)

	k, err := scanAPIKey(row)
	if err != nil {
		return nil, notFoundWrap(err, "get api key")
	}
	return &k, nil
}

func (s *Store) ListAPIKeys(ctx context.Context, tenantID string) ([]apikey.APIKey, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys WHERE tenant_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []apikey.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	return orEmpty(keys), rows.Err()
}

func (s *Store) RevokeAPIKey(ctx context.Context, tenantID, id string) (*apikey.APIKey, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE api_keys SET is_active = FALSE, revoked_at = now()
		WHERE id = $1 AND tenant_id = $2 AND revoked_at IS NULL
		RETURNING `+apiKeyColumns, id, tenantID)

	k, err := scanAPIKey(row)
	if err != nil {
		return nil, notFoundWrap(err, "revoke api key %s", id)
	}
	return &k, nil
}
