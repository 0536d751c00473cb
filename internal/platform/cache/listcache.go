package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss indicates the requested entry is not cached.
var ErrMiss = errors.New("cache miss")

// ListCache caches list responses keyed by resource plus the full query
// parameter tuple. A mutation invalidates every key under the resource
// prefix, so readers never observe a list that predates a write.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache constructs a ListCache with the given entry lifetime.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// Key builds a deterministic cache key from a resource name and the query
// parameters that shaped the response. Parameter order does not matter.
func Key(resource string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("list:")
	b.WriteString(resource)
	for _, name := range names {
		b.WriteString(":")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(params[name])
	}
	return b.String()
}

// Get unmarshals the cached entry for key into target.
func (c *ListCache) Get(ctx context.Context, key string, target any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("platform/cache: get %s: %w", key, err)
	}
	return json.Unmarshal(data, target)
}

// Set stores value under key for the configured TTL.
func (c *ListCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("platform/cache: marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// InvalidateResource removes every cached list for the given resource.
func (c *ListCache) InvalidateResource(ctx context.Context, resource string) error {
	pattern := "list:" + resource + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("platform/cache: scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
