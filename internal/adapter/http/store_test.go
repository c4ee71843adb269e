package http_test

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/domain/audit"
	"github.com/Strob0t/HeadlineForge/internal/domain/experiment"
	"github.com/Strob0t/HeadlineForge/internal/domain/headline"
	"github.com/Strob0t/HeadlineForge/internal/domain/tenant"
	"github.com/Strob0t/HeadlineForge/internal/domain/usage"
	"github.com/Strob0t/HeadlineForge/internal/domain/webhook"
	"github.com/Strob0t/HeadlineForge/internal/port/database"
)

var _ database.Store = (*fakeStore)(nil)

// fakeStore is an in-memory database.Store for handler tests.
type fakeStore struct {
	mu sync.Mutex

	seq         int
	keys        []apikey.APIKey
	headlines   []headline.Headline
	versions    []headline.Version
	usageLogs   []usage.Log
	experiments []experiment.Experiment
	subs        map[string]tenant.Subscription
	audits      int

	pingErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: make(map[string]tenant.Subscription)}
}

func (s *fakeStore) id(prefix string) string {
	s.seq++
	return prefix + "-" + strconv.Itoa(s.seq)
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) CreateAPIKey(_ context.Context, key *apikey.APIKey, maxActive int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.keys {
		if s.keys[i].TenantID == key.TenantID && s.keys[i].RevokedAt.IsZero() {
			n++
		}
	}
	if n >= maxActive {
		return apikey.ErrTooManyKeys
	}
	key.ID = s.id("key")
	key.CreatedAt = time.Now()
	s.keys = append(s.keys, *key)
	return nil
}

func (s *fakeStore) GetActiveAPIKeyByHash(_ context.Context, hash string) (*apikey.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keys {
		if s.keys[i].KeyHash == hash && s.keys[i].RevokedAt.IsZero() {
			k := s.keys[i]
			return &k, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) ListAPIKeys(_ context.Context, tenantID string) ([]apikey.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []apikey.APIKey
	for i := range s.keys {
		if s.keys[i].TenantID == tenantID && s.keys[i].RevokedAt.IsZero() {
			out = append(out, s.keys[i])
		}
	}
	return out, nil
}

func (s *fakeStore) RevokeAPIKey(_ context.Context, tenantID, id string) (*apikey.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keys {
		k := &s.keys[i]
		if k.ID == id && k.TenantID == tenantID && k.RevokedAt.IsZero() {
			k.RevokedAt = time.Now()
			k.Active = false
			out := *k
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) CreateTenant(_ context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	return &tenant.Tenant{ID: "t-new", Name: req.Name, Slug: req.Slug}, nil
}

func (s *fakeStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	return &tenant.Tenant{ID: id}, nil
}

func (s *fakeStore) ListTenantIDs(context.Context) ([]string, error) { return nil, nil }

func (s *fakeStore) GetPlanByName(context.Context, string) (*tenant.Plan, error) {
	return nil, domain.ErrNotFound
}

func (s *fakeStore) GetActiveSubscription(_ context.Context, tenantID string) (*tenant.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[tenantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sub, nil
}

func (s *fakeStore) ReplaceSubscription(_ context.Context, sub *tenant.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.TenantID] = *sub
	return nil
}

func (s *fakeStore) InsertUsageLog(_ context.Context, l *usage.Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usageLogs = append(s.usageLogs, *l)
	return nil
}

func (s *fakeStore) GetUsageMeter(context.Context, string) (*usage.Meter, error) {
	return nil, domain.ErrNotFound
}

func (s *fakeStore) UpsertUsageMeter(context.Context, *usage.Meter) error { return nil }

func (s *fakeStore) CreateHeadline(_ context.Context, h *headline.Headline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.id("hl")
	h.CreatedAt = time.Now()
	s.headlines = append(s.headlines, *h)
	return nil
}

func (s *fakeStore) GetHeadline(_ context.Context, tenantID, id string) (*headline.Headline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.headlines {
		if s.headlines[i].ID == id && s.headlines[i].TenantID == tenantID {
			h := s.headlines[i]
			return &h, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) CreateHeadlineVersion(_ context.Context, v *headline.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.id("ver")
	v.CreatedAt = time.Now()
	s.versions = append(s.versions, *v)
	return nil
}

func (s *fakeStore) ListActiveWebhooks(context.Context, string, string) ([]webhook.Subscription, error) {
	return nil, nil
}

func (s *fakeStore) CreateExperiment(_ context.Context, e *experiment.Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id("exp")
	for i := range e.Variations {
		e.Variations[i].ID = uuid.NewString()
		e.Variations[i].ExperimentID = e.ID
	}
	s.experiments = append(s.experiments, *e)
	return nil
}

func (s *fakeStore) IncrementVariationMetric(_ context.Context, tenantID, experimentID, variationID string, metric experiment.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.experiments {
		e := &s.experiments[i]
		if e.ID != experimentID || e.TenantID != tenantID {
			continue
		}
		for j := range e.Variations {
			if e.Variations[j].ID != variationID {
				continue
			}
			if metric == experiment.MetricConversion {
				e.Variations[j].Conversions++
			} else {
				e.Variations[j].Impressions++
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *fakeStore) InsertAuditEvent(context.Context, *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits++
	return nil
}
