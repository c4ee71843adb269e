package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "headlineforge"

// StartAdmissionSpan starts a span covering credential resolution and metering.
func StartAdmissionSpan(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "admission")
}

// StartGenerationSpan starts a span for one pipeline run.
func StartGenerationSpan(ctx context.Context, tenantID, niche, style string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "headline.generate",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("headline.niche", niche),
			attribute.String("headline.style", style),
		),
	)
}

// StartFanOutSpan starts a span for a webhook fan-out.
func StartFanOutSpan(ctx context.Context, tenantID, event string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "webhook.fanout",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("event.type", event),
		),
	)
}

// EndSpan records err on span (if any) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
