package matchcache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
)

const poolVersionKey = "match:pool_version"

// Entry is the cached outcome for one brief fingerprint.
type Entry struct {
	MatchID    string   `json:"matchId"`
	BriefID    string   `json:"briefId"`
	DesignerID string   `json:"designerId"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Degraded   bool     `json:"degraded"`
}

// Cache is a best-effort Redis result cache. Every failure is treated as a
// miss so a broken Redis never fails a match request.
type Cache struct {
	rdb    *redis.Client
	config *Config
	logger logger.Logger
}

func NewCache(rdb *redis.Client, config *Config, log logger.Logger) *Cache {
	if config == nil {
		config = LoadConfig(0)
	}
	return &Cache{
		rdb:    rdb,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "matchcache"}),
	}
}

// Get looks up the cached entry for a fingerprint. Returns nil on miss and on
// any Redis or decode failure.
func (c *Cache) Get(ctx context.Context, fingerprint string) *Entry {
	raw, err := c.rdb.Get(ctx, c.key(fingerprint)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).Warn("cache read failed, treating as miss", nil)
		}
		metrics.MatchCacheMisses.Inc()
		return nil
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.WithError(err).Warn("cache entry corrupt, treating as miss", map[string]interface{}{
			"fingerprint": fingerprint,
		})
		metrics.MatchCacheMisses.Inc()
		return nil
	}

	metrics.MatchCacheHits.Inc()
	return &entry
}

// Put stores an entry under the fingerprint. The first writer wins via SETNX;
// a concurrent writer only overwrites when its score is strictly higher.
func (c *Cache) Put(ctx context.Context, fingerprint string, entry *Entry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).Warn("cache entry encode failed, skipping write", nil)
		return
	}

	key := c.key(fingerprint)
	created, err := c.rdb.SetNX(ctx, key, payload, c.config.TTL).Result()
	if err != nil {
		c.logger.WithError(err).Warn("cache write failed, continuing without cache", nil)
		return
	}
	if created {
		return
	}

	if existing := c.peek(ctx, key); existing != nil && existing.Score >= entry.Score {
		return
	}

	if err := c.rdb.Set(ctx, key, payload, c.config.TTL).Err(); err != nil {
		c.logger.WithError(err).Warn("cache overwrite failed, continuing without cache", nil)
	}
}

// PoolVersion reads the designer pool version counter. A missing counter
// means the pool has never been reindexed and reads as zero.
func (c *Cache) PoolVersion(ctx context.Context) (int64, error) {
	version, err := c.rdb.Get(ctx, poolVersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

// BumpPoolVersion advances the pool version, invalidating all cached results
// keyed on the previous version.
func (c *Cache) BumpPoolVersion(ctx context.Context) (int64, error) {
	return c.rdb.Incr(ctx, poolVersionKey).Result()
}

// peek reads an entry without touching hit/miss counters. Used by Put to
// compare scores during the overwrite race.
func (c *Cache) peek(ctx context.Context, key string) *Entry {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil
	}
	return &entry
}

func (c *Cache) key(fingerprint string) string {
	return c.config.KeyPrefix + fingerprint
}
