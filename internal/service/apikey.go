package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/domain/audit"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
)

// CredentialStore is the persistence needed by CredentialService.
type CredentialStore interface {
	database.CredentialStore
	database.AuditStore
}

// CredentialService issues, lists and revokes tenant API keys.
type CredentialService struct {
	store    CredentialStore
	resolver *TenantResolver
}

// NewCredentialService creates a CredentialService. resolver may be nil
// when no resolution cache needs invalidating (admin CLI).
func NewCredentialService(store CredentialStore, resolver *TenantResolver) *CredentialService {
	return &CredentialService{store: store, resolver: resolver}
}

// Issue creates a key and returns its secret. The secret is never stored
// and cannot be retrieved again. A tenant already holding the maximum
// number of keys gets apikey.ErrTooManyKeys and nothing is created.
func (s *CredentialService) Issue(ctx context.Context, tenantID string, req apikey.CreateRequest) (*apikey.CreateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	secret, prefix, err := apikey.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	key := &apikey.APIKey{
		TenantID: tenantID,
		Name:     strings.TrimSpace(req.Name),
		Prefix:   prefix,
		KeyHash:  apikey.Hash(secret),
		Active:   true,
	}
	if err := s.store.CreateAPIKey(ctx, key, apikey.MaxActivePerTenant); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}

	s.audit(ctx, tenantID, audit.EventKeyCreated, map[string]any{"api_key_id": key.ID, "name": key.Name})
	slog.InfoContext(ctx, "api key issued", "tenant_id", tenantID, "api_key_id", key.ID)

	return &apikey.CreateResponse{ID: key.ID, Key: secret, Prefix: prefix, Name: key.Name}, nil
}

// List returns the tenant's non-revoked keys.
func (s *CredentialService) List(ctx context.Context, tenantID string) ([]apikey.APIKey, error) {
	keys, err := s.store.ListAPIKeys(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []apikey.APIKey{}
	}
	return keys, nil
}

// Revoke soft-deletes a key owned by tenantID and evicts its cached
// resolution. Keys of other tenants report domain.ErrNotFound.
func (s *CredentialService) Revoke(ctx context.Context, tenantID, id string) error {
	key, err := s.store.RevokeAPIKey(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if s.resolver != nil {
		s.resolver.Invalidate(ctx, key.KeyHash)
	}

	s.audit(ctx, tenantID, audit.EventKeyRevoked, map[string]any{"api_key_id": id})
	slog.InfoContext(ctx, "api key revoked", "tenant_id", tenantID, "api_key_id", id)
	return nil
}

func (s *CredentialService) audit(ctx context.Context, tenantID, eventType string, payload map[string]any) {
	e := &audit.Event{TenantID: tenantID, Actor: actorFromContext(ctx), Type: eventType, Payload: payload}
	if err := s.store.InsertAuditEvent(ctx, e); err != nil {
		slog.WarnContext(ctx, "audit insert failed", "event", eventType, "error", err)
	}
}
