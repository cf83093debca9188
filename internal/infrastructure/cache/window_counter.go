package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowCounter counts hits per key in fixed windows stored in Redis,
// so every instance sees the same count
type RedisWindowCounter struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisWindowCounter creates a counter on client
func NewRedisWindowCounter(client *redis.Client) *RedisWindowCounter {
	return &RedisWindowCounter{client: client, keyPrefix: "ratelimit:"}
}

// Hit counts one hit on key and returns the count of the current window.
// The window starts with the first hit.
func (c *RedisWindowCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := c.keyPrefix + key
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count hit: %w", err)
	}
	return incr.Val(), nil
}

type window struct {
	count     int64
	expiresAt time.Time
}

// MemoryWindowCounter counts hits per key in fixed windows held in process.
// Counts are not shared between instances.
type MemoryWindowCounter struct {
	mu        sync.Mutex
	windows   map[string]*window
	now       func() time.Time
	lastPrune time.Time
}

// NewMemoryWindowCounter creates an empty counter
func NewMemoryWindowCounter() *MemoryWindowCounter {
	return &MemoryWindowCounter{windows: make(map[string]*window), now: time.Now}
}

// Hit counts one hit on key and returns the count of the current window
func (c *MemoryWindowCounter) Hit(_ context.Context, key string, length time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastPrune) > time.Minute {
		c.pruneLocked(now)
	}

	w, ok := c.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		w = &window{expiresAt: now.Add(length)}
		c.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// Size returns the number of live windows
func (c *MemoryWindowCounter) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.windows)
}

func (c *MemoryWindowCounter) pruneLocked(now time.Time) {
	for key, w := range c.windows {
		if !now.Before(w.expiresAt) {
			delete(c.windows, key)
		}
	}
	c.lastPrune = now
}
