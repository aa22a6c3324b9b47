package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/petsafe/petsafe-api/internal/config"
)

const cacheKeyPrefix = "petsafe:geocode:"

// Cache stores resolved addresses
type Cache interface {
	Get(ctx context.Context, key string) (Location, bool, error)
	Set(ctx context.Context, key string, loc Location, ttl time.Duration) error
}

// CacheKey normalizes an address so spacing and case do not split cache entries
func CacheKey(address string) string {
	return cacheKeyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// NoopCache disables caching
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (Location, bool, error) {
	return Location{}, false, nil
}

func (NoopCache) Set(context.Context, string, Location, time.Duration) error {
	return nil
}

// RedisCache stores locations as JSON strings in Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis. It returns nil without error when no address is configured.
func NewRedisCache(ctx context.Context, cfg *config.RedisConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (Location, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Location{}, false, nil
	}
	if err != nil {
		return Location{}, false, err
	}
	var loc Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return Location{}, false, fmt.Errorf("corrupt geocode cache entry: %w", err)
	}
	return loc, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, loc Location, ttl time.Duration) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// Close releases the Redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
