package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/middleware"
)

// ---------------------------------------------------------------------------
// Tenant-scoped handler factories. Every route below sits behind
// middleware.Admission, so the identity is always present.
// ---------------------------------------------------------------------------

func identity(w http.ResponseWriter, r *http.Request) (apikey.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthenticated")
	}
	return id, ok
}

// handleList lists the caller's resources.
func handleList[T any](listFn func(ctx context.Context, tenantID string) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}
		items, err := listFn(r.Context(), id.TenantID)
		if err != nil {
			writeInternalError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeData(w, http.StatusOK, items)
	}
}

// handleCreate decodes a JSON body and creates a resource owned by the caller.
func handleCreate[Req any, Res any](bodyLimit int64, createFn func(ctx context.Context, tenantID string, req Req) (*Res, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}
		req, ok := readJSON[Req](w, r, bodyLimit)
		if !ok {
			return
		}
		res, err := createFn(r.Context(), id.TenantID, req)
		if err != nil {
			writeDomainError(w, r, err, "resource not found")
			return
		}
		writeData(w, http.StatusCreated, res)
	}
}

// handleDelete deletes a caller-owned resource by URL param "id".
func handleDelete(deleteFn func(ctx context.Context, tenantID, id string) error, notFoundMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(w, r)
		if !ok {
			return
		}
		if err := deleteFn(r.Context(), id.TenantID, chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, r, err, notFoundMsg)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
