package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// Cache is a cache-aside helper on top of the Redis repository.
// Every Redis failure is logged and treated as a miss; callers always fall
// through to their primary source.
type Cache struct {
	repo IRedisRepositories
	ttl  time.Duration
}

func NewCache(repo IRedisRepositories, ttl time.Duration) *Cache {
	return &Cache{repo: repo, ttl: ttl}
}

// GetOrSet returns the cached JSON value under key, or runs load and stores its result.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	log := logrus.WithField("key", key)

	if c != nil && c.repo != nil {
		raw, err := c.repo.Get(ctx, key)
		switch {
		case err == nil:
			var cached T
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				log.Debug("Cache hit")
				return cached, nil
			} else {
				log.WithError(jsonErr).Warn("Discarding undecodable cache entry")
			}
		case errors.Is(err, ErrKeyNotFound):
			log.Debug("Cache miss")
		default:
			log.WithError(err).Warn("Cache read failed, falling back to source")
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if c != nil && c.repo != nil {
		data, err := json.Marshal(value)
		if err != nil {
			log.WithError(err).Warn("Failed to encode value for cache")
			return value, nil
		}
		if err := c.repo.Set(ctx, key, data, c.ttl); err != nil {
			log.WithError(err).Warn("Cache write failed")
		}
	}
	return value, nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.repo == nil {
		return
	}
	if err := c.repo.Del(ctx, keys...); err != nil {
		logrus.WithField("keys", keys).WithError(err).Warn("Cache invalidation failed")
	}
}

func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) {
	if c == nil || c.repo == nil {
		return
	}
	if _, err := c.repo.DeleteByPattern(ctx, pattern); err != nil {
		logrus.WithField("pattern", pattern).WithError(err).Warn("Cache invalidation failed")
	}
}
