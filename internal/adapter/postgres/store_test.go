//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Strob0t/HeadlineForge/internal/adapter/postgres"
	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/domain/audit"
	"github.com/Strob0t/HeadlineForge/internal/domain/experiment"
	"github.com/Strob0t/HeadlineForge/internal/domain/headline"
	"github.com/Strob0t/HeadlineForge/internal/domain/tenant"
	"github.com/Strob0t/HeadlineForge/internal/domain/usage"
)

var (
	dsnOnce sync.Once
	dsn     string
	dsnErr  error
)

// testDSN returns DATABASE_URL when set, otherwise starts one shared
// PostgreSQL container for the package.
func testDSN(t *testing.T) string {
	t.Helper()
	dsnOnce.Do(func() {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			dsn = v
			return
		}
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("headlineforge_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			dsnErr = err
			return
		}
		dsn, dsnErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	require.NoError(t, dsnErr, "start postgres")
	return dsn
}

// setupStore runs all migrations and returns a ready-to-use Store.
func setupStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()
	dsn := testDSN(t)

	require.NoError(t, postgres.RunMigrations(ctx, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return postgres.NewStore(pool)
}

func createTenant(t *testing.T, s *postgres.Store) *tenant.Tenant {
	t.Helper()
	tn, err := s.CreateTenant(context.Background(), tenant.CreateRequest{
		Name: "Acme",
		Slug: "acme-" + uuid.NewString()[:8],
	})
	require.NoError(t, err)
	return tn
}

func newKey(tenantID string) *apikey.APIKey {
	secret, prefix, _ := apikey.Generate()
	return &apikey.APIKey{TenantID: tenantID, Name: "ci", Prefix: prefix, KeyHash: apikey.Hash(secret)}
}

func TestStore_APIKeyLifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tn := createTenant(t, s)

	key := newKey(tn.ID)
	require.NoError(t, s.CreateAPIKey(ctx, key, apikey.MaxActivePerTenant))
	assert.NotEmpty(t, key.ID)
	assert.True(t, key.Active)

	got, err := s.GetActiveAPIKeyByHash(ctx, key.KeyHash)
	require.NoError(t, err)
	assert.Equal(t, tn.ID, got.TenantID)

	keys, err := s.ListAPIKeys(ctx, tn.ID)
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	revoked, err := s.RevokeAPIKey(ctx, tn.ID, key.ID)
	require.NoError(t, err)
	assert.Equal(t, key.KeyHash, revoked.KeyHash)
	assert.False(t, revoked.RevokedAt.IsZero())

	_, err = s.GetActiveAPIKeyByHash(ctx, key.KeyHash)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.RevokeAPIKey(ctx, tn.ID, key.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RevokeIsTenantScoped(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	owner := createTenant(t, s)
	other := createTenant(t, s)

	key := newKey(owner.ID)
	require.NoError(t, s.CreateAPIKey(ctx, key, apikey.MaxActivePerTenant))

	_, err := s.RevokeAPIKey(ctx, other.ID, key.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.RevokeAPIKey(ctx, owner.ID, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_FourthKeyRejectedUnderConcurrency(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tn := createTenant(t, s)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.CreateAPIKey(ctx, newKey(tn.ID), apikey.MaxActivePerTenant)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, limited int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrLimitExceeded):
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, apikey.MaxActivePerTenant, ok)
	assert.Equal(t, attempts-apikey.MaxActivePerTenant, limited)

	keys, err := s.ListAPIKeys(ctx, tn.ID)
	require.NoError(t, err)
	assert.Len(t, keys, apikey.MaxActivePerTenant)
}

func TestStore_Subscriptions(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tn := createTenant(t, s)

	_, err := s.GetActiveSubscription(ctx, tn.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pro, err := s.GetPlanByName(ctx, "pro")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), pro.MonthlyRequestLimit)

	period := usage.PeriodAt(time.Now())
	for range 2 {
		sub := &tenant.Subscription{TenantID: tn.ID, Plan: *pro, Status: tenant.StatusActive, PeriodStart: period.Start, PeriodEnd: period.End}
		require.NoError(t, s.ReplaceSubscription(ctx, sub))
	}

	sub, err := s.GetActiveSubscription(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pro", sub.Plan.Name)
	assert.True(t, sub.Entitles())
}

func TestStore_UsageMeterAndLogs(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tn := createTenant(t, s)

	require.NoError(t, s.InsertUsageLog(ctx, &usage.Log{
		TenantID: tn.ID, Path: "/api/v1/headlines/generate", Method: "POST", StatusCode: 500, ResponseTimeMS: 12,
	}))

	_, err := s.GetUsageMeter(ctx, tn.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.UpsertUsageMeter(ctx, &usage.Meter{TenantID: tn.ID, Count: 5, Period: "2026-10"}))
	require.NoError(t, s.UpsertUsageMeter(ctx, &usage.Meter{TenantID: tn.ID, Count: 7, Period: "2026-10"}))

	m, err := s.GetUsageMeter(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.Count)
	assert.False(t, m.LastResetAt.IsZero())
}

func TestStore_HeadlinesVersionsAndExperiments(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tn := createTenant(t, s)
	other := createTenant(t, s)

	scored := headline.Score("Como Ganhar Dinheiro Hoje!")
	h := &headline.Headline{TenantID: tn.ID, Content: "Como Ganhar Dinheiro Hoje!", Niche: "finanças", Style: headline.StyleWhite, Score: scored.Total, Breakdown: scored.Breakdown}
	require.NoError(t, s.CreateHeadline(ctx, h))

	got, err := s.GetHeadline(ctx, tn.ID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, scored.Breakdown, got.Breakdown)

	_, err = s.GetHeadline(ctx, other.ID, h.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v := &headline.Version{HeadlineID: h.ID, Content: "Como Lucrar Hoje?", Label: "B"}
	require.NoError(t, s.CreateHeadlineVersion(ctx, v))

	exp := &experiment.Experiment{
		TenantID:   tn.ID,
		Name:       "hero copy",
		Status:     experiment.StatusRunning,
		Variations: []experiment.Variation{{HeadlineVersionID: v.ID, Weight: 0.5}},
	}
	require.NoError(t, s.CreateExperiment(ctx, exp))
	require.NotEmpty(t, exp.Variations[0].ID)

	require.NoError(t, s.IncrementVariationMetric(ctx, tn.ID, exp.ID, exp.Variations[0].ID, experiment.MetricImpression))
	err = s.IncrementVariationMetric(ctx, other.ID, exp.ID, exp.Variations[0].ID, experiment.MetricConversion)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	foreign := &experiment.Experiment{
		TenantID:   other.ID,
		Name:       "stolen",
		Status:     experiment.StatusRunning,
		Variations: []experiment.Variation{{HeadlineVersionID: v.ID, Weight: 1}},
	}
	assert.ErrorIs(t, s.CreateExperiment(ctx, foreign), domain.ErrNotFound)
}

func TestStore_AuditAndWebhooks(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tn := createTenant(t, s)

	e := &audit.Event{TenantID: tn.ID, Type: audit.EventKeyCreated, Payload: map[string]any{"name": "ci"}}
	require.NoError(t, s.InsertAuditEvent(ctx, e))
	assert.NotEmpty(t, e.ID)

	subs, err := s.ListActiveWebhooks(ctx, tn.ID, headline.EventGenerated)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
