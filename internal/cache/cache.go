package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contenthub/contenthub/pkg/logger"
)

// Cache is a best-effort TTL key-value store over Redis. Values are
// stored as JSON under key: "<prefix><key>" with an absolute expiry.
//
// Every operation swallows backend and serialization errors: callers
// observe a miss or a false success flag, never an error. The record
// store remains the source of truth when Redis is unavailable, so a
// cache outage degrades to slower reads instead of failed requests.
type Cache struct {
	client *redis.Client
	prefix string
}

// New creates a cache over the given client. Prefix may be empty. A
// nil client yields a disabled cache where every read is a miss.
func New(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) disabled() bool {
	return c == nil || c.client == nil
}

// Set serializes value and stores it under key with the given TTL,
// overwriting any existing entry. Returns false on any failure.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	if c.disabled() {
		return false
	}
	b, err := json.Marshal(value)
	if err != nil {
		logger.Errorf("cache: marshal %q: %v", key, err)
		return false
	}
	if err := c.client.Set(ctx, c.key(key), b, ttl).Err(); err != nil {
		logger.Warnf("cache: set %q: %v", key, err)
		return false
	}
	return true
}

// Get loads the entry under key into dest. Returns false when the key
// is absent, expired, or the backend errored.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c.disabled() {
		return false
	}
	b, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("cache: get %q: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		logger.Errorf("cache: unmarshal %q: %v", key, err)
		return false
	}
	return true
}

// Delete removes a single entry. Deleting an absent key succeeds.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if c.disabled() {
		return true
	}
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		logger.Warnf("cache: delete %q: %v", key, err)
		return false
	}
	return true
}

// DeleteByPattern removes every key matching the glob pattern (e.g.
// "content_with_user:*"). Matching nothing is a successful no-op.
// Keys are enumerated with SCAN rather than KEYS to avoid blocking
// the server on large keyspaces.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) bool {
	if c.disabled() {
		return true
	}
	iter := c.client.Scan(ctx, 0, c.key(pattern), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warnf("cache: scan %q: %v", pattern, err)
		return false
	}
	if len(keys) == 0 {
		return true
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warnf("cache: delete pattern %q: %v", pattern, err)
		return false
	}
	return true
}
