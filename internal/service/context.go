package service

import (
	"context"

	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/domain/audit"
)

func actorFromContext(ctx context.Context) string {
	if a := audit.ActorFromContext(ctx); a != "" {
		return a
	}
	if id, ok := apikey.IdentityFromContext(ctx); ok {
		return "api_key:" + id.CredentialID
	}
	return "system"
}
