package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	hfotel "github.com/Strob0t/HeadlineForge/internal/adapter/otel"
	"github.com/Strob0t/HeadlineForge/internal/domain/webhook"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
	"github.com/Strob0t/HeadlineForge/internal/port/notifier"
)

const defaultWebhookConcurrency = 8

// EventEmitter hands a domain event off for fan-out without blocking.
type EventEmitter interface {
	Emit(ctx context.Context, tenantID, eventType string, payload any)
}

// WebhookDispatcher delivers domain events to a tenant's subscribed
// endpoints, one attempt per endpoint per event.
type WebhookDispatcher struct {
	store       database.WebhookStore
	notifier    notifier.Notifier
	concurrency int
	metrics     *hfotel.Metrics
	inflight    sync.WaitGroup
}

// NewWebhookDispatcher creates a dispatcher delivering through n with at
// most concurrency deliveries in flight per event.
func NewWebhookDispatcher(store database.WebhookStore, n notifier.Notifier, concurrency int, metrics *hfotel.Metrics) *WebhookDispatcher {
	if concurrency <= 0 {
		concurrency = defaultWebhookConcurrency
	}
	return &WebhookDispatcher{store: store, notifier: n, concurrency: concurrency, metrics: metrics}
}

// Trigger builds an event and delivers it to every matching subscription,
// waiting for all attempts. Failures are logged, never returned.
func (d *WebhookDispatcher) Trigger(ctx context.Context, tenantID, eventType string, payload any) {
	d.Dispatch(ctx, tenantID, webhook.NewEvent(eventType, payload))
}

// Dispatch delivers an already built event. Each delivery gets its own id.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, tenantID string, ev webhook.Event) {
	ctx, span := hfotel.StartFanOutSpan(ctx, tenantID, ev.Type)
	defer span.End()

	subs, err := d.store.ListActiveWebhooks(ctx, tenantID, ev.Type)
	if err != nil {
		slog.ErrorContext(ctx, "webhook lookup failed", "tenant_id", tenantID, "event", ev.Type, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for _, sub := range subs {
		if !sub.Subscribes(ev.Type) {
			continue
		}
		g.Go(func() error {
			err := d.notifier.Deliver(ctx, sub, ev.ForDelivery())
			d.metrics.RecordWebhookDelivery(ctx, ev.Type, err == nil)
			if err != nil {
				slog.WarnContext(ctx, "webhook delivery failed",
					"tenant_id", tenantID,
					"webhook_id", sub.ID,
					"event", ev.Type,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Emit runs Trigger in the background on a context detached from the
// caller's cancellation.
func (d *WebhookDispatcher) Emit(ctx context.Context, tenantID, eventType string, payload any) {
	d.EmitEvent(ctx, tenantID, webhook.NewEvent(eventType, payload))
}

// EmitEvent runs Dispatch in the background.
func (d *WebhookDispatcher) EmitEvent(ctx context.Context, tenantID string, ev webhook.Event) {
	bg := context.WithoutCancel(ctx)
	d.inflight.Go(func() {
		d.Dispatch(bg, tenantID, ev)
	})
}

// Wait blocks until background fan-outs started by Emit have finished.
func (d *WebhookDispatcher) Wait() {
	d.inflight.Wait()
}
