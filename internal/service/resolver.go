package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/port/cache"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
)

// DefaultAuthCacheVersion namespaces resolution cache keys so a format
// change can abandon old entries.
const DefaultAuthCacheVersion = "key-v3"

// TenantResolver maps credential hashes to tenant identities.
type TenantResolver struct {
	store   database.CredentialStore
	cache   *ReadThrough[apikey.Identity]
	version string
}

// NewTenantResolver creates a resolver caching positive lookups for ttl.
func NewTenantResolver(store database.CredentialStore, c cache.Cache, version string, ttl time.Duration) *TenantResolver {
	if version == "" {
		version = DefaultAuthCacheVersion
	}
	return &TenantResolver{
		store:   store,
		cache:   NewReadThrough[apikey.Identity](c, ttl, "auth"),
		version: version,
	}
}

// CacheKey returns the resolution cache key for a credential hash.
func (r *TenantResolver) CacheKey(hash string) string {
	return "auth:" + r.version + ":" + hash
}

// Resolve returns the identity owning hash, or domain.ErrNotFound when no
// active, non-revoked credential matches.
func (r *TenantResolver) Resolve(ctx context.Context, hash string) (apikey.Identity, error) {
	id, found, err := r.cache.Load(ctx, r.CacheKey(hash), func(ctx context.Context) (apikey.Identity, bool, error) {
		k, err := r.store.GetActiveAPIKeyByHash(ctx, hash)
		if errors.Is(err, domain.ErrNotFound) {
			return apikey.Identity{}, false, nil
		}
		if err != nil {
			return apikey.Identity{}, false, err
		}
		if !k.Usable() {
			return apikey.Identity{}, false, nil
		}
		return apikey.Identity{TenantID: k.TenantID, CredentialID: k.ID}, true, nil
	})
	if err != nil {
		return apikey.Identity{}, fmt.Errorf("resolve credential: %w", err)
	}
	if !found {
		return apikey.Identity{}, fmt.Errorf("credential: %w", domain.ErrNotFound)
	}
	return id, nil
}

// Invalidate drops the cached identity for hash.
func (r *TenantResolver) Invalidate(ctx context.Context, hash string) {
	r.cache.Invalidate(ctx, r.CacheKey(hash))
}
