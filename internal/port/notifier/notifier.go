// Package notifier defines the outbound webhook delivery port.
package notifier

import (
	"context"
	"errors"

	"github.com/Strob0t/HeadlineForge/internal/domain/webhook"
)

// ErrNotConfigured is returned when a target has no usable URL.
var ErrNotConfigured = errors.New("notifier: not configured")

// Notifier delivers one event to one subscription. Exactly one attempt is
// made; retries are the caller's concern.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "http").
	Name() string

	Deliver(ctx context.Context, target webhook.Subscription, ev webhook.Event) error
}
