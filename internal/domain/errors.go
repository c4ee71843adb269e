// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates the caller supplied a malformed payload.
var ErrValidation = errors.New("validation failed")

// ErrUnauthorized indicates a missing, malformed, unknown or revoked credential.
var ErrUnauthorized = errors.New("unauthorized")

// ErrLimitExceeded indicates a tenant exhausted a quota (monthly requests or key slots).
var ErrLimitExceeded = errors.New("limit exceeded")

// ErrUnavailable indicates a dependency could not be reached while a decision
// depended on it.
var ErrUnavailable = errors.New("service unavailable")
