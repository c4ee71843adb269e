package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Strob0t/HeadlineForge/internal/domain/experiment"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
)

// ExperimentService manages headline A/B experiments.
type ExperimentService struct {
	store database.ExperimentStore
}

// NewExperimentService creates an ExperimentService.
func NewExperimentService(store database.ExperimentStore) *ExperimentService {
	return &ExperimentService{store: store}
}

// Create starts a running experiment over the given headline versions.
func (s *ExperimentService) Create(ctx context.Context, tenantID string, req experiment.CreateRequest) (*experiment.Experiment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	e := &experiment.Experiment{
		TenantID: tenantID,
		Name:     strings.TrimSpace(req.Name),
		Status:   experiment.StatusRunning,
	}
	for _, v := range req.Variations {
		e.Variations = append(e.Variations, experiment.Variation{
			HeadlineVersionID: v.HeadlineVersionID,
			Weight:            v.Weight,
		})
	}
	if err := s.store.CreateExperiment(ctx, e); err != nil {
		return nil, fmt.Errorf("create experiment: %w", err)
	}
	return e, nil
}

// Track increments a variation's impression or conversion counter.
func (s *ExperimentService) Track(ctx context.Context, tenantID, experimentID string, req experiment.TrackRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.store.IncrementVariationMetric(ctx, tenantID, experimentID, req.VariationID, req.Type)
}
