package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResponseCache stores raw commerce API response bodies.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

type redisResponseCache struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisResponseCache(redisClient *redis.Client) ResponseCache {
	return &redisResponseCache{
		redisClient: redisClient,
		keyPrefix:   "wipertech:response:",
	}
}

func (c *redisResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.redisClient.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached response %s: %w", key, err)
	}
	return val, true, nil
}

func (c *redisResponseCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.redisClient.Set(ctx, c.keyPrefix+key, body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache response %s: %w", key, err)
	}
	return nil
}
