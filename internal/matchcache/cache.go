package matchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores the ranked eligible-provider id list per care request in
// Redis. A nil *Cache is a no-op, so the service runs fine without
// Redis wired.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache over the given client. A nil client yields a nil
// cache.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func key(requestID string) string {
	return "rank:" + requestID
}

// SetRanked stores the ranked provider ids for a request.
func (c *Cache) SetRanked(ctx context.Context, requestID string, providerIDs []string) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(providerIDs)
	if err != nil {
		return fmt.Errorf("matchcache: marshal failed: %w", err)
	}
	if err := c.client.Set(ctx, key(requestID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("matchcache: set failed: %w", err)
	}
	return nil
}

// GetRanked returns the cached ranked ids, or (nil, false) on a miss.
func (c *Cache) GetRanked(ctx context.Context, requestID string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(requestID)).Bytes()
	if err != nil {
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

// Invalidate drops the cached ranking for a request, e.g. after a
// terminal transition.
func (c *Cache) Invalidate(ctx context.Context, requestID string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, key(requestID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("matchcache: delete failed: %w", err)
	}
	return nil
}
