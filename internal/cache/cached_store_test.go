package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"campaign-webhooks/internal/webhook"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// countingStore wraps the in-memory store and counts Stats calls.
type countingStore struct {
	*webhook.MemoryStore
	mu         sync.Mutex
	statsCalls int
}

func (c *countingStore) Stats(ctx context.Context) (webhook.Stats, error) {
	c.mu.Lock()
	c.statsCalls++
	c.mu.Unlock()
	return c.MemoryStore.Stats(ctx)
}

func newTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStatsCache(rdb, time.Minute), mr
}

func TestCachedStore_ServesStatsFromCache(t *testing.T) {
	c, _ := newTestCache(t)
	inner := &countingStore{MemoryStore: webhook.NewMemoryStore()}
	store := Wrap(inner, c)
	ctx := context.Background()

	if _, err := store.Append(ctx, webhook.NewLogEntry{EventType: "contact_add"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	first, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	second, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if first.TotalLogs != 1 || second.TotalLogs != 1 {
		t.Fatalf("unexpected totals %d %d", first.TotalLogs, second.TotalLogs)
	}
	if inner.statsCalls != 1 {
		t.Fatalf("expected second read served from cache, store hit %d times", inner.statsCalls)
	}
}

func TestCachedStore_AppendInvalidates(t *testing.T) {
	c, _ := newTestCache(t)
	inner := &countingStore{MemoryStore: webhook.NewMemoryStore()}
	store := Wrap(inner, c)
	ctx := context.Background()

	if _, err := store.Stats(ctx); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if _, err := store.Append(ctx, webhook.NewLogEntry{EventType: "contact_add"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalLogs != 1 {
		t.Fatalf("expected invalidated cache to reflect the write, got %d", st.TotalLogs)
	}
}

func TestCachedStore_FallsThroughWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	inner := &countingStore{MemoryStore: webhook.NewMemoryStore()}
	store := Wrap(inner, c)
	ctx := context.Background()

	if _, err := store.Append(ctx, webhook.NewLogEntry{EventType: "contact_add"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	mr.Close()

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("expected fallthrough to store, got %v", err)
	}
	if st.TotalLogs != 1 {
		t.Fatalf("unexpected total %d", st.TotalLogs)
	}
}

func TestWrap_NilCacheReturnsStoreUnchanged(t *testing.T) {
	inner := webhook.NewMemoryStore()
	if got := Wrap(inner, nil); got != webhook.Store(inner) {
		t.Fatalf("expected store returned unchanged")
	}
}
