package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/adapter/memory"
)

func TestReadThrough_PopulatesOnMiss(t *testing.T) {
	c := memory.New()
	rt := NewReadThrough[string](c, time.Hour, "test")
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (string, bool, error) {
		calls++
		return "value", true, nil
	}

	for range 3 {
		v, found, err := rt.Load(ctx, "k", load)
		if err != nil || !found || v != "value" {
			t.Fatalf("Load = %q, %v, %v", v, found, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
}

func TestReadThrough_NotFoundIsNotCached(t *testing.T) {
	c := memory.New()
	rt := NewReadThrough[string](c, time.Hour, "test")
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (string, bool, error) {
		calls++
		return "", false, nil
	}
	for range 2 {
		if _, found, err := rt.Load(ctx, "k", load); err != nil || found {
			t.Fatalf("Load found=%v err=%v", found, err)
		}
	}
	if calls != 2 {
		t.Errorf("loader calls = %d, want 2", calls)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("negative result was cached")
	}
}

func TestReadThrough_CacheErrorIsMiss(t *testing.T) {
	rt := NewReadThrough[int64](brokenCache{}, time.Hour, "test")
	v, found, err := rt.Load(context.Background(), "k", func(context.Context) (int64, bool, error) {
		return 42, true, nil
	})
	if err != nil || !found || v != 42 {
		t.Fatalf("Load = %d, %v, %v", v, found, err)
	}
}

func TestReadThrough_LoaderErrorPropagates(t *testing.T) {
	rt := NewReadThrough[int64](memory.New(), time.Hour, "test")
	_, _, err := rt.Load(context.Background(), "k", func(context.Context) (int64, bool, error) {
		return 0, false, errBackend
	})
	if !errors.Is(err, errBackend) {
		t.Fatalf("expected errBackend, got %v", err)
	}
}

func TestReadThrough_UndecodableEntryIsMiss(t *testing.T) {
	c := memory.New()
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("not json"), time.Hour)

	rt := NewReadThrough[int64](c, time.Hour, "test")
	v, found, err := rt.Load(ctx, "k", func(context.Context) (int64, bool, error) {
		return 7, true, nil
	})
	if err != nil || !found || v != 7 {
		t.Fatalf("Load = %d, %v, %v", v, found, err)
	}
}
