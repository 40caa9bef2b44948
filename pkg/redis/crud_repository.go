package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("redis key does not exist")

type RedisRepositories struct {
	Client *redis.Client
}

type IRedisRepositories interface {
	Set(ctx context.Context, key string, data []byte, expiredTime time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

func NewRedisRepositories(client *redis.Client) *RedisRepositories {
	logrus.Info("🚀 Initialized Repository : Redis")
	return &RedisRepositories{
		Client: client,
	}
}

func (r *RedisRepositories) Set(ctx context.Context, key string, data []byte, expiredTime time.Duration) error {
	logrus.WithField("key", key).Debugf("Setting Redis key with expiration: %v", expiredTime)
	if err := r.Client.Set(ctx, key, string(data), expiredTime).Err(); err != nil {
		logrus.WithField("key", key).WithError(err).Error("Error setting Redis key")
		return err
	}
	return nil
}

func (r *RedisRepositories) Get(ctx context.Context, key string) (string, error) {
	result, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		logrus.WithField("key", key).Debug("Redis key not found")
		return "", ErrKeyNotFound
	} else if err != nil {
		logrus.WithField("key", key).WithError(err).Error("Error getting Redis key")
		return "", err
	}
	return result, nil
}

func (r *RedisRepositories) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := r.Client.Del(ctx, keys...).Result(); err != nil {
		logrus.WithField("keys", keys).WithError(err).Error("Error deleting Redis keys")
		return err
	}
	return nil
}

func (r *RedisRepositories) Exists(ctx context.Context, key string) (bool, error) {
	count, err := r.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RedisRepositories) TTL(ctx context.Context, key string) (time.Duration, error) {
	duration, err := r.Client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return duration, nil
}

// IncrWithExpiry increments a fixed-window counter. The window starts with the
// first increment; later increments leave the expiry untouched.
func (r *RedisRepositories) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := r.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// DeleteByPattern removes every key matching pattern using SCAN, never KEYS.
func (r *RedisRepositories) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	var cursor uint64
	deleted := 0

	for {
		keys, nextCursor, err := r.Client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, err
		}

		if len(keys) > 0 {
			pipeline := r.StartPipeline(ctx)
			pipeline.Del(ctx, keys...)
			if err := pipeline.Execute(ctx); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}

		// Break if SCAN iteration is complete
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}

	logrus.WithFields(logrus.Fields{"pattern": pattern, "deleted": deleted}).Debug("Deleted Redis keys by pattern")
	return deleted, nil
}

// Pipeline represents a Redis pipeline
type Pipeline struct {
	pipe redis.Pipeliner
}

// StartPipeline starts a new Redis pipeline
func (r *RedisRepositories) StartPipeline(ctx context.Context) *Pipeline {
	return &Pipeline{
		pipe: r.Client.Pipeline(),
	}
}

// Execute executes all commands in the pipeline
func (p *Pipeline) Execute(ctx context.Context) error {
	_, err := p.pipe.Exec(ctx)
	return err
}

func (p *Pipeline) Del(ctx context.Context, keys ...string) {
	p.pipe.Del(ctx, keys...)
}
