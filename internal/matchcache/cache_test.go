package matchcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, ttl), mr
}

func TestRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	ids := []string{"prov-1", "prov-2", "prov-3"}
	if err := cache.SetRanked(ctx, "req-1", ids); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok := cache.GetRanked(ctx, "req-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 3 || got[0] != "prov-1" || got[2] != "prov-3" {
		t.Errorf("unexpected ids: %v", got)
	}
}

func TestMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	if _, ok := cache.GetRanked(context.Background(), "nope"); ok {
		t.Error("expected miss for unknown request")
	}
}

func TestTTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	if err := cache.SetRanked(ctx, "req-1", []string{"prov-1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	if _, ok := cache.GetRanked(ctx, "req-1"); ok {
		t.Error("expected entry to expire")
	}
}

func TestInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := cache.SetRanked(ctx, "req-1", []string{"prov-1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Invalidate(ctx, "req-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := cache.GetRanked(ctx, "req-1"); ok {
		t.Error("expected entry to be gone")
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	if err := cache.SetRanked(ctx, "req-1", []string{"x"}); err != nil {
		t.Errorf("nil set: %v", err)
	}
	if _, ok := cache.GetRanked(ctx, "req-1"); ok {
		t.Error("nil cache should always miss")
	}
	if err := cache.Invalidate(ctx, "req-1"); err != nil {
		t.Errorf("nil invalidate: %v", err)
	}
}
