package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"social-dashboard-backend/internal/engagement"
)

// DefaultCacheTTL bounds how long a rendered dashboard stays in Redis.
const DefaultCacheTTL = 5 * time.Minute

// Cache stores derived views as JSON in Redis. A nil *Cache is valid and
// behaves as an always-missing cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis at redisURL ("host:port" or a redis:// URL).
func NewCache(redisURL string) (*Cache, error) {
	if redisURL == "" {
		redisURL = "redis:6379"
	}

	if !strings.Contains(redisURL, "://") {
		redisURL = fmt.Sprintf("redis://%s", redisURL)
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{
			Addr: strings.TrimPrefix(redisURL, "redis://"),
		}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewCacheWithClient(client, DefaultCacheTTL), nil
}

// NewCacheWithClient wraps an existing client.
func NewCacheWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// DashboardKey names the cached dashboard for a dataset version and filter.
// Every upload gets a fresh version, so entries never describe stale data.
func DashboardKey(version string, f engagement.Filter) string {
	return fmt.Sprintf("dashboard:%s:%s", version, f)
}

// GetJSON decodes the cached value at key into dst and reports a hit.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

// SetJSON stores v at key with the cache TTL. Failures are logged only.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.SetEx(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("Warning: failed to cache %s: %v", key, err)
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
