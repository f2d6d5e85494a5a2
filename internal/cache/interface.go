package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// PageCache stores rendered responses under string keys for a bounded time.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Clear removes every key in the prefix namespace ("<prefix>:...") and
	// returns how many were removed.
	Clear(ctx context.Context, prefix string) (int, error)
	Close() error
}

// BuildKey joins a namespace prefix and a suffix.
func BuildKey(prefix, suffix string) string {
	return prefix + ":" + suffix
}
