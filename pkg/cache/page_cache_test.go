package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*PageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewPageCache(rdb, time.Minute), mr
}

func TestDisabledCacheIsMiss(t *testing.T) {
	var nilCache *PageCache
	if nilCache.Enabled() {
		t.Fatal("nil cache must be disabled")
	}
	c := NewPageCache(nil, 0)
	ctx := context.Background()
	c.Set(ctx, "andi-bunga", "", []byte("x"))
	if _, ok := c.Get(ctx, "andi-bunga", ""); ok {
		t.Fatal("disabled cache must always miss")
	}
	c.Invalidate(ctx, "andi-bunga")
}

func TestGuestHashKeepsCase(t *testing.T) {
	if guestHash("BUDI") == guestHash("Budi") {
		t.Fatal("names differing in case must not share a key")
	}
	if guestHash(" Pak Joko ") != guestHash("Pak Joko") {
		t.Fatal("surrounding spaces should not matter")
	}
}

func TestPageCacheGuestVariants(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "andi-bunga", "BUDI", []byte("Kepada BUDI"))
	if _, ok := c.Get(ctx, "andi-bunga", "Budi"); ok {
		t.Fatal("Budi must not hit the BUDI variant")
	}
	got, ok := c.Get(ctx, "andi-bunga", "BUDI")
	if !ok || string(got) != "Kepada BUDI" {
		t.Fatalf("get = %q, %v", got, ok)
	}
}

func TestPageCacheInvalidateDropsAllVariants(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "Andi-Bunga", "", []byte("plain"))
	c.Set(ctx, "andi-bunga", "Sari", []byte("Kepada Sari"))
	c.Invalidate(ctx, "andi-bunga")
	for _, guest := range []string{"", "Sari"} {
		if _, ok := c.Get(ctx, "andi-bunga", guest); ok {
			t.Fatalf("variant %q survived invalidation", guest)
		}
	}

	c.Set(ctx, "andi-bunga", "", []byte("fresh"))
	mr.FastForward(2 * time.Minute)
	if _, ok := c.Get(ctx, "andi-bunga", ""); ok {
		t.Fatal("page outlived its TTL")
	}
}

func TestPageCacheRedisDownIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	c.Set(ctx, "andi-bunga", "", []byte("x"))
	mr.Close()
	if _, ok := c.Get(ctx, "andi-bunga", ""); ok {
		t.Fatal("unreachable redis must read as a miss")
	}
}
