package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "headlineforge"

// Metrics holds the gateway metric instruments. A nil *Metrics records nothing.
type Metrics struct {
	Admissions         metric.Int64Counter
	Rejections         metric.Int64Counter
	Generations        metric.Int64Counter
	GenerationDuration metric.Float64Histogram
	WebhookDeliveries  metric.Int64Counter
}

// NewMetrics creates all metric instruments on mp, or on the global
// provider when mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Admissions, err = meter.Int64Counter("headlineforge.admissions",
		metric.WithDescription("Requests admitted by the gateway"))
	if err != nil {
		return nil, err
	}

	m.Rejections, err = meter.Int64Counter("headlineforge.rejections",
		metric.WithDescription("Requests rejected by the gateway, by reason"))
	if err != nil {
		return nil, err
	}

	m.Generations, err = meter.Int64Counter("headlineforge.generations",
		metric.WithDescription("Headline generations, by outcome"))
	if err != nil {
		return nil, err
	}

	m.GenerationDuration, err = meter.Float64Histogram("headlineforge.generation.duration_seconds",
		metric.WithDescription("Generation latency in seconds"))
	if err != nil {
		return nil, err
	}

	m.WebhookDeliveries, err = meter.Int64Counter("headlineforge.webhook.deliveries",
		metric.WithDescription("Webhook delivery attempts, by outcome"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordAdmission counts an admitted request.
func (m *Metrics) RecordAdmission(ctx context.Context) {
	if m == nil {
		return
	}
	m.Admissions.Add(ctx, 1)
}

// RecordRejection counts a rejected request with its error code.
func (m *Metrics) RecordRejection(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.Rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordGeneration counts a pipeline run and its latency.
func (m *Metrics) RecordGeneration(ctx context.Context, outcome string, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.Generations.Add(ctx, 1, attrs)
	m.GenerationDuration.Record(ctx, seconds, attrs)
}

// RecordWebhookDelivery counts a single delivery attempt.
func (m *Metrics) RecordWebhookDelivery(ctx context.Context, event string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.WebhookDeliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}
