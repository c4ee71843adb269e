package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/domain/webhook"
	"github.com/Strob0t/HeadlineForge/internal/port/messagequeue"
)

var errBackend = errors.New("backend down")

// brokenCache fails every operation.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBackend }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errBackend
}
func (brokenCache) Delete(context.Context, string) error { return errBackend }
func (brokenCache) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errBackend
}
func (brokenCache) Value(context.Context, string) (int64, error) { return 0, errBackend }

type mockGenerator struct {
	text    string
	err     error
	calls   atomic.Int32
	prompts []string
}

func (m *mockGenerator) Name() string { return "mock" }

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	m.prompts = append(m.prompts, prompt)
	return m.text, m.err
}

type delivery struct {
	webhookID string
	event     webhook.Event
}

// mockNotifier records deliveries. failFor makes deliveries to the named
// webhook ids fail.
type mockNotifier struct {
	mu         sync.Mutex
	deliveries []delivery
	failFor    map[string]bool
	delay      time.Duration

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (m *mockNotifier) Name() string { return "mock" }

func (m *mockNotifier) Deliver(_ context.Context, sub webhook.Subscription, ev webhook.Event) error {
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		cur := m.maxInflight.Load()
		if n <= cur || m.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, delivery{webhookID: sub.ID, event: ev})
	if m.failFor[sub.ID] {
		return errors.New("connection refused")
	}
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deliveries)
}

type emitted struct {
	tenantID  string
	eventType string
	payload   any
}

type mockEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (m *mockEmitter) Emit(_ context.Context, tenantID, eventType string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, emitted{tenantID: tenantID, eventType: eventType, payload: payload})
}

type published struct {
	subject string
	data    []byte
}

// mockQueue validates like the real adapter and records publishes.
type mockQueue struct {
	mu         sync.Mutex
	published  []published
	publishErr error
	handler    messagequeue.Handler
	subject    string
}

func (m *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	if err := messagequeue.Validate(subject, data); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, published{subject: subject, data: data})
	return nil
}

func (m *mockQueue) Subscribe(_ context.Context, subject string, h messagequeue.Handler) (func(), error) {
	m.subject = subject
	m.handler = h
	return func() {}, nil
}

func (m *mockQueue) Close() error { return nil }
