package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/models"
)

const keyPrefix = "trends:"

// RedisCache stores research results in Redis as JSON
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache connects to cfg.RedisAddr and verifies the connection
func NewRedisCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger = logger.With("component", "cache")
	logger.Info("research cache ready", "addr", cfg.RedisAddr)
	return &RedisCache{client: client, logger: logger}, nil
}

// Get returns the cached trends for key; ok is false on a miss
func (c *RedisCache) Get(ctx context.Context, key string) ([]models.CandidateTrend, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}

	var trends []models.CandidateTrend
	if err := json.Unmarshal(raw, &trends); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next set.
		c.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return nil, false, nil
	}
	return trends, true, nil
}

// Set stores trends under key for ttl
func (c *RedisCache) Set(ctx context.Context, key string, trends []models.CandidateTrend, ttl time.Duration) error {
	raw, err := json.Marshal(trends)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
