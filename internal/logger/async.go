package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Closer flushes and stops a buffered handler.
type Closer interface {
	Close()
}

type nopCloser struct{}

func (nopCloser) Close() {}

// entry pairs a record with the derived handler that must write it, so
// attributes added through WithAttrs survive the hop to the worker.
type entry struct {
	h   slog.Handler
	rec slog.Record
}

// queue is shared by a BufferedHandler and every handler derived from it.
type queue struct {
	mu      sync.RWMutex
	closed  bool
	ch      chan entry
	wg      sync.WaitGroup
	dropped atomic.Int64
	once    sync.Once
}

// BufferedHandler moves record encoding off the request path. When the
// buffer is full, records below WARN are dropped and counted; WARN and above
// are written inline so gateway failures always reach the log.
type BufferedHandler struct {
	inner slog.Handler
	q     *queue
}

// NewAsyncHandler starts workers draining a buffer of size records into inner.
func NewAsyncHandler(inner slog.Handler, size, workers int) *BufferedHandler {
	q := &queue{ch: make(chan entry, size)}
	for range max(workers, 1) {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for e := range q.ch {
				_ = e.h.Handle(context.Background(), e.rec)
			}
		}()
	}
	return &BufferedHandler{inner: inner, q: q}
}

func (h *BufferedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *BufferedHandler) Handle(ctx context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	h.q.mu.RLock()
	if !h.q.closed {
		select {
		case h.q.ch <- entry{h: h.inner, rec: rec.Clone()}:
			h.q.mu.RUnlock()
			return nil
		default:
		}
	}
	closed := h.q.closed
	h.q.mu.RUnlock()

	if closed || rec.Level >= slog.LevelWarn {
		return h.inner.Handle(ctx, rec)
	}
	h.q.dropped.Add(1)
	return nil
}

func (h *BufferedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferedHandler{inner: h.inner.WithAttrs(attrs), q: h.q}
}

func (h *BufferedHandler) WithGroup(name string) slog.Handler {
	return &BufferedHandler{inner: h.inner.WithGroup(name), q: h.q}
}

// DroppedCount reports how many records were discarded on a full buffer.
func (h *BufferedHandler) DroppedCount() int64 {
	return h.q.dropped.Load()
}

// Close drains the buffer and stops the workers. Records handled afterwards
// are written inline. Safe to call more than once.
func (h *BufferedHandler) Close() {
	h.q.once.Do(func() {
		h.q.mu.Lock()
		h.q.closed = true
		close(h.q.ch)
		h.q.mu.Unlock()
		h.q.wg.Wait()

		if n := h.q.dropped.Load(); n > 0 {
			rec := slog.NewRecord(time.Now(), slog.LevelWarn, "log records dropped", 0)
			rec.AddAttrs(slog.Int64("count", n))
			_ = h.inner.Handle(context.Background(), rec)
		}
	})
}
