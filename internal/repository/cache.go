package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/CWS-Project/order-service/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache implements Cache using Redis.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(cfg config.RedisConfig, logger *zap.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return NewRedisCacheWithClient(client, logger)
}

func NewRedisCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger.Named("redis-cache"),
	}
}

// Get returns the cached value for key. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", zap.String("key", key), zap.Error(err))
		return "", false, err
	}

	c.logger.Debug("Cache hit", zap.String("key", key))
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("Cache set error", zap.String("key", key), zap.Error(err))
		return err
	}

	c.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete error", zap.String("key", key), zap.Error(err))
		return err
	}

	c.logger.Debug("Cache delete", zap.String("key", key))
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
