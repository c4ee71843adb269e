package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

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

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is a minimal in-memory implementation of database.Store for testing.
type mockStore struct {
	mu sync.Mutex

	seq           int
	keys          []apikey.APIKey
	tenants       []tenant.Tenant
	plans         []tenant.Plan
	subs          []tenant.Subscription
	usageLogs     []usage.Log
	meters        map[string]usage.Meter
	headlines     []headline.Headline
	versions      []headline.Version
	webhooks      []webhook.Subscription
	experiments   []experiment.Experiment
	auditEvents   []audit.Event
	metricUpdates []string

	keyLookups atomic.Int32
	subLookups atomic.Int32

	// Error hooks, set these to inject failures.
	getKeyErr         error
	getSubErr         error
	createHeadlineErr error
	listWebhooksErr   error
}

func newMockStore() *mockStore {
	return &mockStore{meters: make(map[string]usage.Meter)}
}

func (m *mockStore) nextID(prefix string) string {
	m.seq++
	return prefix + "-" + strconv.Itoa(m.seq)
}

func (m *mockStore) Ping(_ context.Context) error { return nil }

func (m *mockStore) CreateAPIKey(_ context.Context, key *apikey.APIKey, maxActive int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	for i := range m.keys {
		if m.keys[i].TenantID == key.TenantID && m.keys[i].RevokedAt.IsZero() {
			active++
		}
	}
	if active >= maxActive {
		return apikey.ErrTooManyKeys
	}
	key.ID = m.nextID("key")
	key.CreatedAt = time.Now()
	m.keys = append(m.keys, *key)
	return nil
}

func (m *mockStore) GetActiveAPIKeyByHash(_ context.Context, keyHash string) (*apikey.APIKey, error) {
	m.keyLookups.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getKeyErr != nil {
		return nil, m.getKeyErr
	}
	for i := range m.keys {
		if m.keys[i].KeyHash == keyHash && m.keys[i].Usable() {
			k := m.keys[i]
			return &k, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListAPIKeys(_ context.Context, tenantID string) ([]apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []apikey.APIKey
	for _, k := range m.keys {
		if k.TenantID == tenantID && k.RevokedAt.IsZero() {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *mockStore) RevokeAPIKey(_ context.Context, tenantID, id string) (*apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.keys {
		k := &m.keys[i]
		if k.ID == id && k.TenantID == tenantID && k.RevokedAt.IsZero() {
			k.Active = false
			k.RevokedAt = time.Now()
			out := *k
			return &out, nil
		}
	}
	return nil, fmt.Errorf("revoke api key %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) CreateTenant(_ context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Slug == req.Slug {
			return nil, domain.ErrConflict
		}
	}
	t := tenant.Tenant{ID: m.nextID("tenant"), Name: req.Name, Slug: req.Slug, CreatedAt: time.Now()}
	m.tenants = append(m.tenants, t)
	return &t, nil
}

func (m *mockStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			t := m.tenants[i]
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListTenantIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.tenants))
	for _, t := range m.tenants {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (m *mockStore) GetPlanByName(_ context.Context, name string) (*tenant.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.plans {
		if m.plans[i].Name == name {
			p := m.plans[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetActiveSubscription(_ context.Context, tenantID string) (*tenant.Subscription, error) {
	m.subLookups.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getSubErr != nil {
		return nil, m.getSubErr
	}
	for i := range m.subs {
		if m.subs[i].TenantID == tenantID && m.subs[i].Entitles() {
			s := m.subs[i]
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ReplaceSubscription(_ context.Context, sub *tenant.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subs {
		if m.subs[i].TenantID == sub.TenantID && m.subs[i].Entitles() {
			m.subs[i].Status = tenant.StatusCanceled
		}
	}
	sub.ID = m.nextID("sub")
	m.subs = append(m.subs, *sub)
	return nil
}

func (m *mockStore) InsertUsageLog(_ context.Context, l *usage.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = m.nextID("log")
	m.usageLogs = append(m.usageLogs, *l)
	return nil
}

func (m *mockStore) GetUsageMeter(_ context.Context, tenantID string) (*usage.Meter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.meters[tenantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &mt, nil
}

func (m *mockStore) UpsertUsageMeter(_ context.Context, meter *usage.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meters[meter.TenantID] = *meter
	return nil
}

func (m *mockStore) CreateHeadline(_ context.Context, h *headline.Headline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createHeadlineErr != nil {
		return m.createHeadlineErr
	}
	h.ID = m.nextID("headline")
	h.CreatedAt = time.Now()
	m.headlines = append(m.headlines, *h)
	return nil
}

func (m *mockStore) GetHeadline(_ context.Context, tenantID, id string) (*headline.Headline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.headlines {
		if m.headlines[i].ID == id && m.headlines[i].TenantID == tenantID {
			h := m.headlines[i]
			return &h, nil
		}
	}
	return nil, fmt.Errorf("get headline %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) CreateHeadlineVersion(_ context.Context, v *headline.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = m.nextID("version")
	v.CreatedAt = time.Now()
	m.versions = append(m.versions, *v)
	return nil
}

func (m *mockStore) ListActiveWebhooks(_ context.Context, tenantID, eventType string) ([]webhook.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listWebhooksErr != nil {
		return nil, m.listWebhooksErr
	}
	var out []webhook.Subscription
	for _, w := range m.webhooks {
		if w.TenantID == tenantID && w.Active && slices.Contains(w.Events, eventType) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockStore) CreateExperiment(_ context.Context, e *experiment.Experiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID("exp")
	for i := range e.Variations {
		e.Variations[i].ID = m.nextID("var")
		e.Variations[i].ExperimentID = e.ID
	}
	m.experiments = append(m.experiments, *e)
	return nil
}

func (m *mockStore) IncrementVariationMetric(_ context.Context, tenantID, experimentID, variationID string, metric experiment.Metric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.experiments {
		if e.ID != experimentID || e.TenantID != tenantID {
			continue
		}
		for _, v := range e.Variations {
			if v.ID == variationID {
				m.metricUpdates = append(m.metricUpdates, variationID+":"+string(metric))
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) InsertAuditEvent(_ context.Context, e *audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID("audit")
	m.auditEvents = append(m.auditEvents, *e)
	return nil
}
