// Package webhookhttp implements notifier.Notifier by POSTing signed JSON
// envelopes to tenant webhook endpoints.
package webhookhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Strob0t/HeadlineForge/internal/domain/webhook"
	"github.com/Strob0t/HeadlineForge/internal/port/notifier"
)

const providerName = "http"

// maxErrorBody bounds how much of a failing response is kept for logs.
const maxErrorBody = 512

// Notifier delivers webhook events over HTTP.
type Notifier struct {
	httpClient *http.Client
}

// NewNotifier creates a notifier whose requests time out after timeout and
// are traced through otelhttp.
func NewNotifier(timeout time.Duration) *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewNotifierWithClient uses a caller-supplied client; used in tests.
func NewNotifierWithClient(c *http.Client) *Notifier {
	return &Notifier{httpClient: c}
}

func (n *Notifier) Name() string { return providerName }

// Deliver makes exactly one POST attempt. Non-2xx responses are errors.
func (n *Notifier) Deliver(ctx context.Context, target webhook.Subscription, ev webhook.Event) error {
	if target.TargetURL == "" {
		return notifier.ErrNotConfigured
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("webhook marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.TargetURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.HeaderEvent, ev.Type)
	req.Header.Set(webhook.HeaderID, ev.ID)
	if target.Secret != "" {
		req.Header.Set(webhook.HeaderSignature, webhook.Sign(body, target.Secret))
	}

	resp, err := n.httpClient.Do(req) //nolint:gosec // target URL is tenant-registered
	if err != nil {
		return fmt.Errorf("webhook send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook %s responded %d: %s", target.TargetURL, resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
