package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/HeadlineForge/internal/domain/experiment"
	"github.com/Strob0t/HeadlineForge/internal/domain/headline"
	"github.com/Strob0t/HeadlineForge/internal/service"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Headlines   *service.HeadlineService
	Credentials *service.CredentialService
	Usage       *service.UsageService
	Experiments *service.ExperimentService

	// Readiness maps a dependency name to its probe.
	Readiness map[string]Pinger
	// BodyLimit caps JSON request bodies; zero means 1 MiB.
	BodyLimit int64
}

func (h *Handlers) bodyLimit() int64 {
	if h.BodyLimit > 0 {
		return h.BodyLimit
	}
	return defaultBodyLimit
}

// --- Headlines ---

// Generate handles POST /api/v1/headlines/generate.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[headline.GenerateRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	res, err := h.Headlines.Generate(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err, "headline not found")
		return
	}
	writeData(w, http.StatusOK, res)
}

type versionResponse struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Score   int    `json:"score"`
}

// CreateVersion handles POST /api/v1/headlines/{id}/versions.
func (h *Handlers) CreateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[headline.CreateVersionRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	v, err := h.Headlines.CreateVersion(r.Context(), id.TenantID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, r, err, "headline not found")
		return
	}
	writeData(w, http.StatusCreated, versionResponse{ID: v.ID, Content: v.Content, Score: v.Score})
}

// --- Usage ---

// GetUsage handles GET /api/v1/usage.
func (h *Handlers) GetUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	sum, err := h.Usage.Summary(r.Context(), id.TenantID)
	if err != nil {
		writeDomainError(w, r, err, "tenant not found")
		return
	}
	writeData(w, http.StatusOK, sum)
}

// --- API keys ---

// ListAPIKeys handles GET /api/v1/auth/api-keys.
func (h *Handlers) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	handleList(h.Credentials.List)(w, r)
}

// CreateAPIKey handles POST /api/v1/auth/api-keys.
func (h *Handlers) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.bodyLimit(), h.Credentials.Issue)(w, r)
}

// RevokeAPIKey handles DELETE /api/v1/auth/api-keys/{id}.
func (h *Handlers) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Credentials.Revoke, "api key not found")(w, r)
}

// --- Experiments ---

// CreateExperiment handles POST /api/v1/experiments.
func (h *Handlers) CreateExperiment(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.bodyLimit(), h.Experiments.Create)(w, r)
}

// TrackExperiment handles POST /api/v1/experiments/{id}/track.
func (h *Handlers) TrackExperiment(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[experiment.TrackRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	if err := h.Experiments.Track(r.Context(), id.TenantID, chi.URLParam(r, "id"), req); err != nil {
		writeDomainError(w, r, err, "experiment not found")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// --- Health ---

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready by pinging every registered dependency.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.Readiness))
	for name, p := range h.Readiness {
		if err := p.Ping(ctx); err != nil {
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}
	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}
