package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// LayeredCache fronts a shared backend (Redis) with a small in-process L1.
// Reads backfill L1; writes go to both layers.
type LayeredCache struct {
	l1 *MemoryCache
	l2 Service
}

const defaultL1Size = 1000

// NewLayeredCache wraps l2 with an in-process layer of maxSize entries.
// A non-positive maxSize falls back to the default.
func NewLayeredCache(l2 Service, maxSize int) *LayeredCache {
	if maxSize <= 0 {
		maxSize = defaultL1Size
	}
	return &LayeredCache{
		l1: NewMemoryCache(WithMemoryMaxSize(maxSize)),
		l2: l2,
	}
}

func (c *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		return nil
	}

	var raw json.RawMessage
	if err := c.l2.Get(ctx, key, &raw); err != nil {
		return err
	}
	// keep the L1 copy short-lived; L2 owns the real TTL
	_ = c.l1.Set(ctx, key, raw, time.Minute)
	return json.Unmarshal(raw, dest)
}

func (c *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.l2.Set(ctx, key, value, ttl)
}

func (c *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	err1 := c.l1.Delete(ctx, keys...)
	err2 := c.l2.Delete(ctx, keys...)
	if err1 != nil {
		return err1
	}
	return err2
}

func (c *LayeredCache) Close() error {
	err1 := c.l1.Close()
	err2 := c.l2.Close()
	if err1 != nil && !errors.Is(err1, ErrCacheMiss) {
		return err1
	}
	return err2
}
