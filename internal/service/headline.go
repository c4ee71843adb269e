package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	hfotel "github.com/Strob0t/HeadlineForge/internal/adapter/otel"
	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/domain/headline"
	"github.com/Strob0t/HeadlineForge/internal/domain/usage"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
	"github.com/Strob0t/HeadlineForge/internal/port/generator"
)

const generatePath = "/api/v1/headlines/generate"

// ErrEmptyHeadline is returned when the generator produced only whitespace
// or quotes.
var ErrEmptyHeadline = errors.New("generator returned an empty headline")

// HeadlineStore is the persistence needed by HeadlineService.
type HeadlineStore interface {
	database.HeadlineStore
	database.UsageStore
}

// HeadlineService runs the metered generation pipeline.
type HeadlineService struct {
	store   HeadlineStore
	gen     generator.Generator
	events  EventEmitter
	metrics *hfotel.Metrics
	now     func() time.Time
}

// NewHeadlineService creates a HeadlineService. metrics may be nil.
func NewHeadlineService(store HeadlineStore, gen generator.Generator, events EventEmitter, metrics *hfotel.Metrics) *HeadlineService {
	return &HeadlineService{store: store, gen: gen, events: events, metrics: metrics, now: time.Now}
}

// Generate builds a prompt, generates and scores a headline, persists it,
// logs usage and emits headline.generated. Every call that reaches the
// generator leaves a usage log, including failed ones.
func (s *HeadlineService) Generate(ctx context.Context, id apikey.Identity, req headline.GenerateRequest) (*headline.Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	ctx, span := hfotel.StartGenerationSpan(ctx, id.TenantID, req.Niche, string(req.Style))

	res, err := s.generate(ctx, id, req)

	elapsed := s.now().Sub(start)
	status := http.StatusOK
	outcome := "success"
	if err != nil {
		status = http.StatusInternalServerError
		outcome = "failure"
	}
	s.logUsage(ctx, id, status, elapsed)
	s.metrics.RecordGeneration(ctx, outcome, elapsed.Seconds())
	hfotel.EndSpan(span, err)

	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, id.TenantID, headline.EventGenerated, res)
	return res, nil
}

func (s *HeadlineService) generate(ctx context.Context, id apikey.Identity, req headline.GenerateRequest) (*headline.Result, error) {
	text, err := s.gen.Generate(ctx, headline.BuildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("generate headline (%s): %w", s.gen.Name(), err)
	}
	content := headline.StripQuotes(text)
	if content == "" {
		return nil, ErrEmptyHeadline
	}

	score := headline.Score(content)
	h := &headline.Headline{
		TenantID:  id.TenantID,
		Content:   content,
		Niche:     req.Niche,
		Style:     req.Style,
		Score:     score.Total,
		Breakdown: score.Breakdown,
	}
	if err := s.store.CreateHeadline(ctx, h); err != nil {
		return nil, fmt.Errorf("persist headline: %w", err)
	}

	return &headline.Result{ID: h.ID, Content: h.Content, Score: h.Score, Breakdown: h.Breakdown}, nil
}

func (s *HeadlineService) logUsage(ctx context.Context, id apikey.Identity, status int, elapsed time.Duration) {
	l := &usage.Log{
		TenantID:       id.TenantID,
		CredentialID:   id.CredentialID,
		Path:           generatePath,
		Method:         http.MethodPost,
		StatusCode:     status,
		ResponseTimeMS: elapsed.Milliseconds(),
	}
	if err := s.store.InsertUsageLog(context.WithoutCancel(ctx), l); err != nil {
		slog.ErrorContext(ctx, "usage log insert failed", "tenant_id", id.TenantID, "error", err)
	}
}

// CreateVersion scores content as a new version of a tenant-owned headline.
func (s *HeadlineService) CreateVersion(ctx context.Context, tenantID, headlineID string, req headline.CreateVersionRequest) (*headline.Version, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetHeadline(ctx, tenantID, headlineID); err != nil {
		return nil, err
	}

	content := headline.StripQuotes(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	score := headline.Score(content)
	v := &headline.Version{
		HeadlineID: headlineID,
		Content:    content,
		Label:      strings.TrimSpace(req.Label),
		Score:      score.Total,
		Breakdown:  score.Breakdown,
	}
	if err := s.store.CreateHeadlineVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}
	return v, nil
}
