package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Strob0t/HeadlineForge/internal/domain/webhook"
	"github.com/Strob0t/HeadlineForge/internal/port/messagequeue"
)

// EventBus decouples fan-out from the request path by publishing events
// to the message queue. A subscriber started with Start hands them to the
// dispatcher. Publish failures fall back to in-process dispatch.
type EventBus struct {
	queue      messagequeue.Queue
	dispatcher *WebhookDispatcher
}

// NewEventBus creates an EventBus.
func NewEventBus(q messagequeue.Queue, d *WebhookDispatcher) *EventBus {
	return &EventBus{queue: q, dispatcher: d}
}

// Emit publishes the event on events.<type>.
func (b *EventBus) Emit(ctx context.Context, tenantID, eventType string, payload any) {
	ev := webhook.NewEvent(eventType, payload)

	raw, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "event payload encode failed", "event", eventType, "error", err)
		return
	}
	data, err := json.Marshal(messagequeue.EventPayload{
		TenantID:  tenantID,
		EventID:   ev.ID,
		Type:      ev.Type,
		Timestamp: ev.Timestamp,
		Payload:   raw,
	})
	if err != nil {
		slog.ErrorContext(ctx, "event encode failed", "event", eventType, "error", err)
		return
	}

	if err := b.queue.Publish(context.WithoutCancel(ctx), messagequeue.EventSubject(eventType), data); err != nil {
		slog.WarnContext(ctx, "event publish failed, dispatching in-process", "event", eventType, "error", err)
		b.dispatcher.EmitEvent(ctx, tenantID, ev)
	}
}

// Start subscribes to all events and dispatches them. The returned func
// stops the subscription.
func (b *EventBus) Start(ctx context.Context) (func(), error) {
	return b.queue.Subscribe(ctx, messagequeue.SubjectEventsAll, b.handle)
}

func (b *EventBus) handle(ctx context.Context, subject string, data []byte) error {
	var p messagequeue.EventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		// Redelivery cannot fix a malformed message.
		slog.ErrorContext(ctx, "dropping malformed event", "subject", subject, "error", err)
		return nil
	}
	b.dispatcher.Dispatch(ctx, p.TenantID, webhook.Event{
		ID:        p.EventID,
		Type:      p.Type,
		Timestamp: p.Timestamp,
		Payload:   p.Payload,
	})
	return nil
}
