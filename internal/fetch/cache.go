package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"

	"cbso/internal/platform/config"
	platformredis "cbso/internal/platform/redis"
	"cbso/pkg/platform/sentinel"
)

// PayloadCache stores raw registry payloads by key. A miss is reported as
// sentinel.ErrNotFound; any other error is a backend failure.
type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
}

// DiskCache keeps payloads as files under one directory, one file per key.
type DiskCache struct {
	dir string
}

// NewDiskCache creates the cache directory if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Get(_ context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("payload %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read cached payload %s: %w", key, err)
	}
	return payload, nil
}

func (c *DiskCache) Set(_ context.Context, key string, payload []byte) error {
	if err := os.WriteFile(c.path(key), payload, 0o644); err != nil {
		return fmt.Errorf("write cached payload %s: %w", key, err)
	}
	return nil
}

func (c *DiskCache) path(key string) string {
	// Keys carry a "kind:id" shape; keep them filesystem-safe.
	name := strings.NewReplacer(":", "_", "/", "_").Replace(key) + ".json"
	return filepath.Join(c.dir, name)
}

// RedisCache keeps payloads in Redis with the configured retention.
type RedisCache struct {
	client *platformredis.Client
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client *platformredis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("payload %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return payload, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Set(ctx, key, payload, config.PayloadCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
