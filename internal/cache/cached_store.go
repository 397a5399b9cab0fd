package cache

import (
	"context"

	"campaign-webhooks/internal/webhook"
)

// CachedStore decorates a webhook.Store with the Redis stats cache.
// Writes pass through and invalidate the snapshot; Stats reads serve
// from cache when fresh. All other methods delegate unchanged.
type CachedStore struct {
	webhook.Store
	cache *StatsCache
}

// Wrap returns store unchanged when no cache is configured.
func Wrap(store webhook.Store, cache *StatsCache) webhook.Store {
	if cache == nil {
		return store
	}
	return &CachedStore{Store: store, cache: cache}
}

func (s *CachedStore) Append(ctx context.Context, e webhook.NewLogEntry) (int64, error) {
	id, err := s.Store.Append(ctx, e)
	if err == nil {
		s.cache.Invalidate(ctx)
	}
	return id, err
}

func (s *CachedStore) Stats(ctx context.Context) (webhook.Stats, error) {
	if st, ok := s.cache.Get(ctx); ok {
		return st, nil
	}
	st, err := s.Store.Stats(ctx)
	if err != nil {
		return webhook.Stats{}, err
	}
	s.cache.Set(ctx, st)
	return st, nil
}
