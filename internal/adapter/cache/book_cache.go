// Package cache holds the Redis-backed catalog cache. Only the browse
// list is cached; lending and admin paths read the store directly, and
// every book write drops the whole cache.
package cache

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	library "lending-service/internal/domain/library"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

const keyPrefix = "books:"

// BookCache caches catalog list results keyed by category filter.
type BookCache interface {
	// GetList returns the cached list for a category filter, or nil on miss.
	GetList(ctx context.Context, category string) ([]library.Book, error)

	// SetList stores a list result with the configured TTL.
	SetList(ctx context.Context, category string, books []library.Book) error

	// Invalidate drops every cached list.
	Invalidate(ctx context.Context) error
}

// RedisBookCache implements BookCache on Redis.
type RedisBookCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisBookCache creates a Redis-backed catalog cache.
func NewRedisBookCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisBookCache {
	return &RedisBookCache{client: client, ttl: ttl, log: log}
}

func listKey(category string) string {
	if category == "" {
		return keyPrefix + "all"
	}
	return keyPrefix + "cat:" + category
}

// GetList retrieves a cached catalog list. A miss is not an error.
func (c *RedisBookCache) GetList(ctx context.Context, category string) ([]library.Book, error) {
	key := listKey(category)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.log.Debug("catalog cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to read catalog cache", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	var books []library.Book
	if err := codec.Unmarshal(data, &books); err != nil {
		c.log.Error("failed to decode cached catalog", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	c.log.Debug("catalog cache hit", zap.String("key", key), zap.Int("books", len(books)))
	return books, nil
}

// SetList stores a catalog list with TTL.
func (c *RedisBookCache) SetList(ctx context.Context, category string, books []library.Book) error {
	key := listKey(category)

	data, err := codec.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode catalog for cache: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to write catalog cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.log.Debug("catalog cached", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

// Invalidate removes every books:* key. Category keys are unbounded only
// by the set of categories in use, so a scan is cheap here.
func (c *RedisBookCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Error("failed to scan catalog cache keys", zap.Error(err))
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to invalidate catalog cache", zap.Int("keys", len(keys)), zap.Error(err))
		return err
	}

	c.log.Debug("catalog cache invalidated", zap.Int("keys", len(keys)))
	return nil
}
