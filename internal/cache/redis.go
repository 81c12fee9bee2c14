// internal/cache/redis.go

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces cache keys in a shared Redis.
	DefaultKeyPrefix = "recipescrapexter:import:"

	// DefaultTTL is how long an import stays cached.
	DefaultTTL = 24 * time.Hour
)

// RedisConfig configures RedisCache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// RedisCache keeps JSON-encoded entries in Redis with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to Redis and pings it.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisCacheWithClient(client, cfg.TTL, cfg.Prefix), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client redis.UniversalClient, ttl time.Duration, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

// Key maps a URL to its Redis key. URLs are hashed to keep keys short.
func (c *RedisCache) Key(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the entry for url or ErrMiss.
func (c *RedisCache) Get(ctx context.Context, url string) (*Entry, error) {
	data, err := c.client.Get(ctx, c.Key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cached entry: %w", err)
	}
	if entry.Recipe == nil {
		return nil, ErrMiss
	}
	return &entry, nil
}

// Set stores entry under url for the configured TTL.
func (c *RedisCache) Set(ctx context.Context, url string, entry *Entry) error {
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(url), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the entry for url.
func (c *RedisCache) Delete(ctx context.Context, url string) error {
	return c.client.Del(ctx, c.Key(url)).Err()
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
