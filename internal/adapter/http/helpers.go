package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/middleware"
)

const defaultBodyLimit = 1 << 20

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request, bodyLimit int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, middleware.CodeBadRequest, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, middleware.CodeBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// writeData wraps data in {"success":true,"data":...}.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	middleware.WriteError(w, status, code, message)
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
		writeError(w, http.StatusBadRequest, middleware.CodeBadRequest, msg)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, middleware.CodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrLimitExceeded):
		msg := strings.TrimPrefix(err.Error(), domain.ErrLimitExceeded.Error()+": ")
		writeError(w, http.StatusBadRequest, middleware.CodeLimitExceeded, msg)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, middleware.CodeConflict, "resource already exists")
	case errors.Is(err, domain.ErrUnavailable):
		slog.ErrorContext(r.Context(), "dependency unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, middleware.CodeServiceUnavailable, "service temporarily unavailable")
	default:
		writeInternalError(w, r, err)
	}
}

// writeInternalError logs the actual error server-side and returns a generic message to the client.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed", "error", err)
	writeError(w, http.StatusInternalServerError, middleware.CodeInternal, "internal server error")
}
