package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Gorstka/Yatube/internal/config"
)

const clearScanCount = 500

// RedisPageCache implements PageCache on Redis so every instance behind a
// load balancer sees the same cached pages.
type RedisPageCache struct {
	client     *redis.Client
	ownsClient bool
}

// NewRedisPageCache connects to Redis and verifies the connection.
func NewRedisPageCache(cfg config.RedisConfig) (*RedisPageCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPageCache{client: client, ownsClient: true}, nil
}

// NewRedisPageCacheFromClient wraps an existing client. Close leaves the
// client open.
func NewRedisPageCacheFromClient(client *redis.Client) *RedisPageCache {
	return &RedisPageCache{client: client}
}

func (c *RedisPageCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return data, nil
}

func (c *RedisPageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisPageCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Clear walks the namespace with SCAN so large keyspaces never block Redis.
func (c *RedisPageCache) Clear(ctx context.Context, prefix string) (int, error) {
	pattern := escapeGlob(prefix) + ":*"

	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, clearScanCount).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan redis: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete from redis: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

func (c *RedisPageCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

var _ PageCache = (*RedisPageCache)(nil)
