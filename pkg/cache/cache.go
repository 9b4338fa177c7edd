package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is the cache contract shared by the memory, Redis, and layered
// backends. Values round-trip through JSON so every backend behaves the
// same for structured values.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// BarsKey builds the cache key for one batch fetch: a hash over the sorted
// instrument set plus the window, so the same set in any order hits the
// same entry.
func BarsKey(codes []string, days int) string {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Strings(sorted)

	h := md5.New()
	h.Write([]byte(strings.Join(sorted, ",")))
	return fmt.Sprintf("bars:%dd:%s", days, hex.EncodeToString(h.Sum(nil)))
}
