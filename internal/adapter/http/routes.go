package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouteOptions carries the metered-group middleware built by the caller.
type RouteOptions struct {
	// Admission authenticates the bearer key and charges the tenant's quota.
	Admission func(http.Handler) http.Handler
	// Burst is an optional per-tenant burst limiter, mounted after Admission.
	Burst func(http.Handler) http.Handler
	// Trace wraps metered routes in a server span. Optional.
	Trace func(http.Handler) http.Handler
}

// MountRoutes registers all API routes on the given chi router. Health probes
// are public; everything under /api/v1 is metered.
func MountRoutes(r chi.Router, h *Handlers, opts RouteOptions) {
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		if opts.Trace != nil {
			r.Use(opts.Trace)
		}
		r.Use(opts.Admission, recordTenant)
		if opts.Burst != nil {
			r.Use(opts.Burst)
		}

		// Headlines
		r.Post("/headlines/generate", h.Generate)
		r.Post("/headlines/{id}/versions", h.CreateVersion)

		// Usage
		r.Get("/usage", h.GetUsage)

		// API keys
		r.Get("/auth/api-keys", h.ListAPIKeys)
		r.Post("/auth/api-keys", h.CreateAPIKey)
		r.Delete("/auth/api-keys/{id}", h.RevokeAPIKey)

		// Experiments
		r.Post("/experiments", h.CreateExperiment)
		r.Post("/experiments/{id}/track", h.TrackExperiment)
	})
}
