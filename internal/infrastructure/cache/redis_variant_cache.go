package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// RedisVariantCache implements VariantCache using Redis. Suitable for
// distributed deployments where multiple instances share the variant to
// inventory-item lookup table between push runs.
type RedisVariantCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

var _ syncdomain.VariantCache = (*RedisVariantCache)(nil)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisVariantCache creates a new Redis-backed variant cache
func NewRedisVariantCache(cfg RedisConfig, ttl time.Duration) (*RedisVariantCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisVariantCacheWithClient(client, "", ttl), nil
}

// NewRedisVariantCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisVariantCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisVariantCache {
	if keyPrefix == "" {
		keyPrefix = "sync:variant:"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisVariantCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// GetInventoryItemID returns the cached inventory item ID for a variant.
// Redis errors are treated as cache misses; the caller falls back to the
// Target API.
func (c *RedisVariantCache) GetInventoryItemID(ctx context.Context, variantID string) (string, bool) {
	value, err := c.client.Get(ctx, c.keyPrefix+variantID).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

// PutInventoryItemID stores the inventory item ID for a variant. Write
// failures are ignored; the cache is an optimization, not a source of truth.
func (c *RedisVariantCache) PutInventoryItemID(ctx context.Context, variantID, inventoryItemID string) {
	c.client.Set(ctx, c.keyPrefix+variantID, inventoryItemID, c.ttl)
}

// Close closes the underlying Redis client
func (c *RedisVariantCache) Close() error {
	return c.client.Close()
}
