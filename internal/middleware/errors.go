package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes of the JSON error envelope.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeLimitExceeded      = "LIMIT_EXCEEDED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorDetail is the body of a failed response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope is the JSON shape of every error response.
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// WriteError writes {"success":false,"error":{"code","message"}}.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorEnvelope{Error: ErrorDetail{Code: code, Message: message}}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
