package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/HeadlineForge/internal/domain/experiment"
)

// CreateExperiment inserts the experiment and its variations in one transaction.
func (s *Store) CreateExperiment(ctx context.Context, e *experiment.Experiment) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin create experiment: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO experiments (tenant_id, name, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		e.TenantID, e.Name, string(e.Status),
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create experiment: %w", err)
	}

	for i := range e.Variations {
		v := &e.Variations[i]
		v.ExperimentID = e.ID
		// The version must belong to a headline of the same tenant.
		err := tx.QueryRow(ctx, `
			INSERT INTO experiment_variations (experiment_id, headline_version_id, weight)
			SELECT $1, hv.id, $3
			FROM headline_versions hv JOIN headlines h ON h.id = hv.headline_id
			WHERE hv.id = $2 AND h.tenant_id = $4
			RETURNING id`,
			e.ID, v.HeadlineVersionID, v.Weight, e.TenantID,
		).Scan(&v.ID)
		if err != nil {
			return notFoundWrap(err, "create variation for version %s", v.HeadlineVersionID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit experiment: %w", err)
	}
	return nil
}

func (s *Store) IncrementVariationMetric(ctx context.Context, tenantID, experimentID, variationID string, metric experiment.Metric) error {
	var column string
	switch metric {
	case experiment.MetricImpression:
		column = "impressions"
	case experiment.MetricConversion:
		column = "conversions"
	default:
		return fmt.Errorf("unknown metric %q", metric)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE experiment_variations v SET `+column+` = v.`+column+` + 1
		FROM experiments e
		WHERE v.id = $1 AND v.experiment_id = $2 AND e.id = v.experiment_id AND e.tenant_id = $3`,
		variationID, experimentID, tenantID)
	return execExpectOne(tag, err, "track %s on variation %s", metric, variationID)
}
