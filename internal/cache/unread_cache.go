package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// UnreadStore is the subset of RedisCache the unread cache relies on.
type UnreadStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// UnreadCache caches per-(user, room) unread counts with a short TTL. A stale
// count is tolerable; writers invalidate on message delivery and on mark-read.
type UnreadCache struct {
	store UnreadStore
	ttl   time.Duration
}

// NewUnreadCache creates an UnreadCache. A nil store disables caching.
func NewUnreadCache(store UnreadStore, ttl time.Duration) *UnreadCache {
	return &UnreadCache{store: store, ttl: ttl}
}

func unreadKey(userID, roomID string) string {
	return fmt.Sprintf("unread:%s:%s", userID, roomID)
}

// GetCount returns the cached count for (user, room); ok=false on miss.
func (c *UnreadCache) GetCount(ctx context.Context, userID, roomID string) (int, bool) {
	if c == nil || c.store == nil {
		return 0, false
	}
	raw, err := c.store.Get(ctx, unreadKey(userID, roomID))
	if err != nil || raw == nil {
		return 0, false
	}
	count, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetCount stores the count for (user, room).
func (c *UnreadCache) SetCount(ctx context.Context, userID, roomID string, count int) {
	if c == nil || c.store == nil {
		return
	}
	_ = c.store.Set(ctx, unreadKey(userID, roomID), []byte(strconv.Itoa(count)), c.ttl)
}

// InvalidateRoom drops the cached counts of the given members for one room.
func (c *UnreadCache) InvalidateRoom(ctx context.Context, roomID string, userIDs ...string) {
	if c == nil || c.store == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		keys = append(keys, unreadKey(userID, roomID))
	}
	_ = c.store.Delete(ctx, keys...)
}
