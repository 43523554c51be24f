package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atxlegis/bill-analyzer/internal/domain"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Logger   *log.Logger
}

// RedisCache backs AnalysisCache with a shared Redis instance.
type RedisCache struct {
	client *redis.Client
	logger *log.Logger
}

func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client, logger: cfg.Logger}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (*domain.AnalysisResult, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Printf("cache get failed key=%s err=%v", key, err)
		}
		return nil, false
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		if c.logger != nil {
			c.logger.Printf("cache entry corrupt key=%s err=%v", key, err)
		}
		_ = c.client.Del(ctx, key).Err()
		return nil, false
	}
	return &result, true
}

func (c *RedisCache) Put(ctx context.Context, key string, result *domain.AnalysisResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	payload, err := json.Marshal(result)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("cache encode failed key=%s err=%v", key, err)
		}
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil && c.logger != nil {
		c.logger.Printf("cache put failed key=%s err=%v", key, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) TryLock(ctx context.Context, key string, ttl time.Duration) bool {
	acquired, err := c.client.SetNX(ctx, lockKey(key), 1, ttl).Result()
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("cache lock failed key=%s err=%v", key, err)
		}
		// When the lock cannot be taken the build proceeds unlocked; a
		// redundant rebuild beats a stalled request.
		return true
	}
	return acquired
}

func (c *RedisCache) Unlock(ctx context.Context, key string) {
	_ = c.client.Del(ctx, lockKey(key)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
