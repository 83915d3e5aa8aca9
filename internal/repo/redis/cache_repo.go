package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const pagePrefix = "pages:"

// CacheRepo caches rendered directory pages. Moderation decisions and admin
// writes invalidate by prefix so stale listings never outlive a decision.
type CacheRepo struct {
	client *goredis.Client
}

func NewCacheRepo(client *goredis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

func (r *CacheRepo) GetPage(ctx context.Context, key string) ([]byte, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return nil, false, fmt.Errorf("cache key is required")
	}

	data, err := r.client.Get(ctx, pagePrefix+key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached page: %w", err)
	}

	return data, true, nil
}

func (r *CacheRepo) SetPage(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if key == "" || ttl <= 0 {
		return fmt.Errorf("invalid cache payload")
	}

	if err := r.client.Set(ctx, pagePrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set cached page: %w", err)
	}

	return nil
}

// InvalidatePages drops every cached page under the given prefix. SCAN keeps
// the sweep incremental so a large cache does not block redis.
func (r *CacheRepo) InvalidatePages(ctx context.Context, prefix string) (int, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	pattern := pagePrefix + prefix + "*"
	var cursor uint64
	deleted := 0

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan cached pages: %w", err)
		}
		if len(keys) > 0 {
			removed, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("delete cached pages: %w", err)
			}
			deleted += int(removed)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
