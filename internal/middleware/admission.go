package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/logger"
	"github.com/Strob0t/HeadlineForge/internal/service"
)

// Admitter authenticates a bearer secret and meters the call.
type Admitter interface {
	Admit(ctx context.Context, secret string) (apikey.Identity, service.Decision, error)
}

// Admission returns middleware guarding metered routes. It rejects missing
// or unknown credentials with 401, exhausted quotas with 429 and any
// failure to decide with 503. Admitted requests carry the identity in
// their context.
func Admission(a Admitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing or malformed bearer token")
				return
			}

			id, dec, err := a.Admit(r.Context(), secret)
			if dec.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(dec.Limit, 10))
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(dec.Remaining(), 10))
			}

			switch {
			case err == nil:
			case errors.Is(err, domain.ErrUnauthorized):
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			case errors.Is(err, domain.ErrLimitExceeded):
				WriteError(w, http.StatusTooManyRequests, CodeLimitExceeded, "monthly request limit exceeded")
				return
			default:
				WriteError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, "service temporarily unavailable")
				return
			}

			ctx := apikey.WithIdentity(r.Context(), id)
			ctx = logger.WithTenantID(ctx, id.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IdentityFromContext returns the identity of an admitted request.
func IdentityFromContext(ctx context.Context) (apikey.Identity, bool) {
	return apikey.IdentityFromContext(ctx)
}
