package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moonscan/tokenrank/internal/domain"
)

// StatsCache serves ReputationStats snapshots. The scoring path only ever
// reads an already-resolved snapshot; recompute and invalidation belong to
// the refresher.
type StatsCache interface {
	Get(ctx context.Context, actorID string) (domain.ReputationStats, bool, error)
	Put(ctx context.Context, stats domain.ReputationStats) error
	Stats() CacheStats
}

// CacheStats reports cache effectiveness for the metrics endpoint.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

// HitRate is hits over total lookups, 0 when nothing has been asked yet.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// RedisStatsCache is the production StatsCache: JSON-encoded snapshots under
// a key prefix, each bounded by the configured TTL so stale reputations age
// out rather than serve forever.
type RedisStatsCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// NewRedisStatsCache wraps an existing client. TTL comes from
// ReputationConfig.CacheTTL.
func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: "tokenrank:rep:",
	}
}

// NewRedisClient builds a client with the pool and timeout settings we run
// everywhere.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})
}

// Get returns the cached snapshot for an actor. A miss is (zero, false, nil):
// callers treat missing reputation as an unproven actor, not an error.
func (c *RedisStatsCache) Get(ctx context.Context, actorID string) (domain.ReputationStats, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+actorID).Result()
	if err != nil {
		if err == redis.Nil {
			c.misses.Add(1)
			return domain.ReputationStats{}, false, nil
		}
		c.errors.Add(1)
		return domain.ReputationStats{}, false, fmt.Errorf("reputation cache get %s: %w", actorID, err)
	}

	var stats domain.ReputationStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		c.errors.Add(1)
		return domain.ReputationStats{}, false, fmt.Errorf("reputation cache decode %s: %w", actorID, err)
	}
	c.hits.Add(1)
	return stats, true, nil
}

// Put stores a freshly recomputed snapshot under the TTL. Snapshots are
// whole-value replacements, never field merges.
func (c *RedisStatsCache) Put(ctx context.Context, stats domain.ReputationStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("reputation cache encode %s: %w", stats.ActorID, err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+stats.ActorID, raw, c.ttl).Err(); err != nil {
		c.errors.Add(1)
		return fmt.Errorf("reputation cache put %s: %w", stats.ActorID, err)
	}
	return nil
}

// Stats returns a point-in-time view of hit/miss counters.
func (c *RedisStatsCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
}
