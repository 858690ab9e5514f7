package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "cv:analysis:abc:score", "41", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := c.Get(ctx, "cv:analysis:abc:score")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || val != "41" {
		t.Fatalf("expected hit with 41, got ok=%v val=%q", ok, val)
	}

	_, ok, err = c.Get(ctx, "cv:analysis:missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestMemoryCacheInvalidatePattern(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	keys := []string{
		"cv:analysis:abc:score",
		"cv:analysis:abc:profile",
		"cv:analysis:def:score",
	}
	for _, k := range keys {
		if err := c.Set(ctx, k, "x", 0); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	removed, err := c.InvalidatePattern(ctx, "cv:analysis:abc:*")
	if err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, ok, _ := c.Get(ctx, "cv:analysis:def:score"); !ok {
		t.Fatal("expected unrelated key to survive")
	}
}
