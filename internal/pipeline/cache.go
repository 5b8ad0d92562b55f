package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/deppfellow/ctxword/internal/metrics"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CacheKeyPrefix namespaces every cache entry written by Cached.
const CacheKeyPrefix = "ctxword:synonyms:"

// CacheKey derives the Redis key of a lookup from all of its inputs.
func CacheKey(sentence string, span Span, limit int) string {
	payload, _ := json.Marshal(findRequest{
		Sentence:  sentence,
		Positions: span,
		Limit:     limit,
	})
	sum := sha256.Sum256(payload)
	return CacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Cached keeps pipeline answers in Redis for a fixed TTL.
//
// Redis is never allowed to fail a lookup: read and write errors are logged
// and the call falls through to the wrapped pipeline.
type Cached struct {
	next    Pipeline
	redis   *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// NewCached wraps next with a Redis cache.
func NewCached(next Pipeline, client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *zerolog.Logger) *Cached {
	return &Cached{
		next:    next,
		redis:   client,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

// Find returns the cached table for these inputs or asks the wrapped pipeline.
func (c *Cached) Find(ctx context.Context, sentence string, span Span, limit int) (*Table, error) {
	key := CacheKey(sentence, span, limit)

	if table, ok := c.lookup(ctx, key); ok {
		return table, nil
	}

	table, err := c.next.Find(ctx, sentence, span, limit)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, table)
	return table, nil
}

// Ping checks the wrapped pipeline.
func (c *Cached) Ping(ctx context.Context) error {
	return Ping(ctx, c.next)
}

func (c *Cached) lookup(ctx context.Context, key string) (*Table, bool) {
	cached, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		c.metrics.ObserveCache(metrics.CacheMiss)
		return nil, false
	default:
		c.metrics.ObserveCache(metrics.CacheError)
		c.logger.Warn().Err(err).Str("key", key).Msg("pipeline cache read failed")
		return nil, false
	}

	var table Table
	if err := json.Unmarshal(cached, &table); err != nil {
		c.metrics.ObserveCache(metrics.CacheError)
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable pipeline cache entry")
		return nil, false
	}

	c.metrics.ObserveCache(metrics.CacheHit)
	return &table, true
}

func (c *Cached) store(ctx context.Context, key string, table *Table) {
	payload, err := table.MarshalJSON()
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("pipeline answer is not cacheable")
		return
	}

	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("pipeline cache write failed")
	}
}
