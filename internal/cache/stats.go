package cache

import (
	"context"
	"encoding/json"
	"time"

	"campaign-webhooks/internal/webhook"
	"campaign-webhooks/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const statsKey = "webhook:stats"

// StatsCache keeps the aggregate stats snapshot in Redis for a short
// TTL so the health check and admin stats endpoint stop hammering the
// database with three aggregate queries per poll.
//
// The cache is strictly best-effort: any Redis or decode failure
// behaves as a miss and the caller falls through to the store.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func (c *StatsCache) Get(ctx context.Context) (webhook.Stats, bool) {
	raw, err := c.rdb.Get(ctx, statsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.From(ctx).Debug("stats cache read failed", "err", err)
		}
		return webhook.Stats{}, false
	}
	var st webhook.Stats
	if err := json.Unmarshal(raw, &st); err != nil {
		return webhook.Stats{}, false
	}
	return st, true
}

func (c *StatsCache) Set(ctx context.Context, st webhook.Stats) {
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, statsKey, raw, c.ttl).Err(); err != nil {
		logger.From(ctx).Debug("stats cache write failed", "err", err)
	}
}

func (c *StatsCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, statsKey).Err(); err != nil {
		logger.From(ctx).Debug("stats cache invalidate failed", "err", err)
	}
}
