// Package apikey defines the tenant API key (credential) domain model.
package apikey

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Strob0t/HeadlineForge/internal/domain"
)

// MaxActivePerTenant caps the number of non-revoked keys a tenant may hold.
const MaxActivePerTenant = 3

const maxNameLength = 50

// APIKey is a stored credential. The plaintext secret is never persisted.
type APIKey struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Name       string    `json:"name"`
	Prefix     string    `json:"prefix"`
	KeyHash    string    `json:"-"` // SHA-256 hex, never serialized
	Active     bool      `json:"active"`
	LastUsedAt time.Time `json:"last_used_at,omitzero"`
	CreatedAt  time.Time `json:"created_at"`
	RevokedAt  time.Time `json:"revoked_at,omitzero"`
}

// Usable reports whether the key may authenticate requests.
func (k *APIKey) Usable() bool {
	return k.Active && k.RevokedAt.IsZero()
}

// Identity is what a credential resolves to.
type Identity struct {
	TenantID     string `json:"tenant_id"`
	CredentialID string `json:"credential_id"`
}

// CreateRequest is the input for issuing a new key.
type CreateRequest struct {
	Name string `json:"name"`
}

// Validate checks the request fields.
func (r *CreateRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", domain.ErrValidation, maxNameLength)
	}
	return nil
}

// CreateResponse is returned exactly once when a key is issued.
type CreateResponse struct {
	ID     string `json:"id"`
	Key    string `json:"key"` // only returned once
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

// ErrTooManyKeys is returned when a tenant already holds MaxActivePerTenant keys.
var ErrTooManyKeys = fmt.Errorf("%w: maximum of %d api keys allowed per tenant", domain.ErrLimitExceeded, MaxActivePerTenant)
