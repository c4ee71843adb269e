package ristretto_test

import (
	"context"
	"testing"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/adapter/ristretto"
)

func TestCache_SetGetDelete(t *testing.T) {
	c, err := ristretto.New(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "auth:key-v3:abc", []byte(`{"tenant_id":"t1"}`), time.Hour); err != nil {
		t.Fatal(err)
	}
	val, found, err := c.Get(ctx, "auth:key-v3:abc")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != `{"tenant_id":"t1"}` {
		t.Fatalf("Get = %q, %v", val, found)
	}

	_ = c.Delete(ctx, "auth:key-v3:abc")
	if _, found, _ := c.Get(ctx, "auth:key-v3:abc"); found {
		t.Fatal("expected miss after Delete")
	}
}
