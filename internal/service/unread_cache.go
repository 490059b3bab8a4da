package service

import (
	"context"
	"strconv"
	"time"

	"github.com/spec-kit/it-tracker/internal/persistence"
)

const unreadCacheTTL = 60 * time.Second

// UnreadCache keeps per-user unread notification counts in Redis so the
// navbar badge poll does not hit Postgres on every request. It is a
// soft dependency: any Redis failure falls through to the database.
type UnreadCache struct {
	redis *persistence.Redis
}

// NewUnreadCache wraps the shared Redis client.
func NewUnreadCache(redis *persistence.Redis) *UnreadCache {
	return &UnreadCache{redis: redis}
}

func (c *UnreadCache) key(userID string) string {
	return "notifications:unread:" + userID
}

// Get returns the cached count and whether it was present.
func (c *UnreadCache) Get(ctx context.Context, userID string) (int, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return 0, false
	}
	val, err := c.redis.Client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with a short TTL.
func (c *UnreadCache) Set(ctx context.Context, userID string, count int) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	_ = c.redis.Client.Set(ctx, c.key(userID), count, unreadCacheTTL).Err()
}

// Invalidate drops the cached count after any notification write.
func (c *UnreadCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	_ = c.redis.Client.Del(ctx, c.key(userID)).Err()
}
