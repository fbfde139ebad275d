package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UnreadCache keeps the per-user unread aggregate in Redis for the navbar
// badge. It is a short-TTL accelerator, never the source of truth; the
// counter is recomputed from the ledger on every miss.
type UnreadCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUnreadCache(rdb *redis.Client, ttl time.Duration) *UnreadCache {
	return &UnreadCache{rdb: rdb, ttl: ttl}
}

func key(userID string) string { return "unread:" + userID }

// Get returns the cached count and whether it was present.
func (c *UnreadCache) Get(ctx context.Context, userID string) (int64, bool, error) {
	if c == nil || c.rdb == nil {
		return 0, false, nil
	}
	v, err := c.rdb.Get(ctx, key(userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (c *UnreadCache) Set(ctx context.Context, userID string, n int64) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, key(userID), n, c.ttl).Err()
}

// Invalidate drops the cached counts for the given users.
func (c *UnreadCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if c == nil || c.rdb == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = key(id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}
