// Package cachetest holds the compliance suite every cache.Store adapter runs.
package cachetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/port/cache"
)

// RunComplianceTests runs the standard compliance test suite against any Cache implementation.
func RunComplianceTests(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "compliance-key", []byte("compliance-val"), time.Minute); err != nil {
			t.Fatal(err)
		}
		val, found, err := c.Get(ctx, "compliance-key")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after Set")
		}
		if string(val) != "compliance-val" {
			t.Fatalf("expected compliance-val, got %s", val)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		_, found, err := c.Get(ctx, "nonexistent-key")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for nonexistent key")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "del-key", []byte("del-val"), time.Minute)
		if err := c.Delete(ctx, "del-key"); err != nil {
			t.Fatal(err)
		}
		_, found, err := c.Get(ctx, "del-key")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss after Delete")
		}
	})

	t.Run("DeleteNonexistent", func(t *testing.T) {
		if err := c.Delete(ctx, "never-existed"); err != nil {
			t.Fatal("Delete of nonexistent key should not error")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "ow-key", []byte("v1"), time.Minute)
		_ = c.Set(ctx, "ow-key", []byte("v2"), time.Minute)
		val, found, err := c.Get(ctx, "ow-key")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after overwrite")
		}
		if string(val) != "v2" {
			t.Fatalf("expected v2 after overwrite, got %s", val)
		}
	})
}

// RunCounterComplianceTests checks Counter semantics shared by every Store.
func RunCounterComplianceTests(t *testing.T, c cache.Counter) {
	t.Helper()
	ctx := context.Background()

	t.Run("IncrFromZero", func(t *testing.T) {
		n, err := c.Incr(ctx, "compliance-counter", time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("expected 1, got %d", n)
		}
		n, _ = c.Incr(ctx, "compliance-counter", time.Hour)
		if n != 2 {
			t.Fatalf("expected 2, got %d", n)
		}
	})

	t.Run("ValueMissing", func(t *testing.T) {
		v, err := c.Value(ctx, "compliance-missing-counter")
		if err != nil {
			t.Fatal(err)
		}
		if v != 0 {
			t.Fatalf("expected 0, got %d", v)
		}
	})

	t.Run("IncrConcurrent", func(t *testing.T) {
		const workers, perWorker = 8, 25
		var wg sync.WaitGroup
		errs := make(chan error, workers*perWorker)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perWorker {
					if _, err := c.Incr(ctx, "compliance-concurrent", time.Hour); err != nil {
						errs <- err
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent Incr: %v", err)
		}

		v, err := c.Value(ctx, "compliance-concurrent")
		if err != nil {
			t.Fatal(err)
		}
		if v != workers*perWorker {
			t.Fatalf("expected %d, got %d", workers*perWorker, v)
		}
	})
}
