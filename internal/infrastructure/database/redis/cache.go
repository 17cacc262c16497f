package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/pkg/errors"
)

var (
	ErrCacheMiss        = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrCacheUnavailable = errors.New(errors.ErrCodeServiceUnavailable, "cache unavailable")
)

// DefaultKeyPrefix namespaces every key written by this package.
const DefaultKeyPrefix = "smilescombine:"

// Cache stores string values under prefixed keys.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value; a zero ttl selects the cache default.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}

type redisCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	jitter     float64
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) {
		c.prefix = prefix
	}
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) {
		c.defaultTTL = ttl
	}
}

// WithTTLJitter spreads expirations by up to the given fraction of the TTL
// so that entries written together do not expire together.
func WithTTLJitter(fraction float64) CacheOption {
	return func(c *redisCache) {
		c.jitter = fraction
	}
}

// NewRedisCache returns a Cache backed by client.
func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	c := &redisCache{
		client:     client,
		logger:     log,
		prefix:     DefaultKeyPrefix,
		defaultTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) buildKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if c.jitter <= 0 || ttl <= 0 {
		return ttl
	}
	spread := int64(float64(ttl) * c.jitter)
	if spread <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(spread))
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.buildKey(key)).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeCacheError, "cache get failed").WithDetail(key)
	}
	return val, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.buildKey(key), value, c.ttl(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set failed").WithDetail(key)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.buildKey(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
	}
	return nil
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.buildKey(key)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "cache exists failed").WithDetail(key)
	}
	return n > 0, nil
}

// DeleteByPrefix removes every key under prefix using SCAN, never KEYS.
func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	match := c.buildKey(prefix) + "*"
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "cache scan failed")
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Debug("Deleted cache keys by prefix", logging.String("prefix", prefix), logging.Int64("count", deleted))
	return deleted, nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "cache unavailable")
	}
	return nil
}

//Personal.AI order the ending
