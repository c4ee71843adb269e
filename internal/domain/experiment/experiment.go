// Package experiment defines A/B experiments over headline versions.
package experiment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/HeadlineForge/internal/domain"
)

// Status of an experiment.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// Metric is a tracked variation counter.
type Metric string

const (
	MetricImpression Metric = "impression"
	MetricConversion Metric = "conversion"
)

// Experiment groups weighted variations of headline versions.
type Experiment struct {
	ID         string      `json:"id"`
	TenantID   string      `json:"tenant_id"`
	Name       string      `json:"name"`
	Status     Status      `json:"status"`
	Variations []Variation `json:"variations"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Variation is one arm of an experiment.
type Variation struct {
	ID                string  `json:"id"`
	ExperimentID      string  `json:"experiment_id"`
	HeadlineVersionID string  `json:"headline_version_id"`
	Weight            float64 `json:"weight"`
	Impressions       int64   `json:"impressions"`
	Conversions       int64   `json:"conversions"`
}

// CreateRequest is the payload for creating an experiment.
type CreateRequest struct {
	Name       string             `json:"name"`
	Variations []VariationRequest `json:"variations"`
}

// VariationRequest describes one requested variation.
type VariationRequest struct {
	HeadlineVersionID string  `json:"headline_version_id"`
	Weight            float64 `json:"weight"`
}

// Validate checks the request fields.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len(r.Variations) == 0 {
		return fmt.Errorf("%w: at least one variation is required", domain.ErrValidation)
	}
	for i, v := range r.Variations {
		if err := uuid.Validate(v.HeadlineVersionID); err != nil {
			return fmt.Errorf("%w: variations[%d].headline_version_id must be a uuid", domain.ErrValidation, i)
		}
		if v.Weight < 0 || v.Weight > 1 {
			return fmt.Errorf("%w: variations[%d].weight must be within [0,1]", domain.ErrValidation, i)
		}
	}
	return nil
}

// TrackRequest records an impression or conversion for a variation.
type TrackRequest struct {
	VariationID string `json:"variation_id"`
	Type        Metric `json:"type"`
}

// Validate checks the request fields.
func (r *TrackRequest) Validate() error {
	if err := uuid.Validate(r.VariationID); err != nil {
		return fmt.Errorf("%w: variation_id must be a uuid", domain.ErrValidation)
	}
	if r.Type != MetricImpression && r.Type != MetricConversion {
		return fmt.Errorf("%w: type must be %q or %q", domain.ErrValidation, MetricImpression, MetricConversion)
	}
	return nil
}
