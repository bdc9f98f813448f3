package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"warehousenow/warehouse/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCache guarda o cache no Redis, compartilhado entre réplicas.
// Todas as chaves ficam sob um namespace (padrão "warehousenow:cache:").
//
// O Redis expira as chaves sozinho, então ExpiredEntries é sempre 0.
type RedisCache struct {
	rdb       redis.UniversalClient
	namespace string
	scanCount int64
}

type RedisCacheOption func(*RedisCache)

func WithCacheNamespace(ns string) RedisCacheOption {
	return func(c *RedisCache) { c.namespace = strings.TrimRight(ns, ":") + ":" }
}

func NewRedisCache(rdb redis.UniversalClient, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		rdb:       rdb,
		namespace: "warehousenow:cache:",
		scanCount: 200,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, c.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("redis cache get %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis cache set %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, c.namespace+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefixes ...string) (int, error) {
	total := 0
	for _, p := range prefixes {
		keys, err := c.scan(ctx, c.namespace+p+"*")
		if err != nil {
			return total, err
		}
		if len(keys) == 0 {
			continue
		}
		n, err := c.rdb.Del(ctx, keys...).Result()
		if err != nil {
			return total, fmt.Errorf("redis cache delete %s*: %w", p, err)
		}
		total += int(n)
	}
	return total, nil
}

func (c *RedisCache) Stats(ctx context.Context) (domain.CacheStats, error) {
	keys, err := c.scan(ctx, c.namespace+"*")
	if err != nil {
		return domain.CacheStats{}, err
	}

	var st domain.CacheStats
	for _, k := range keys {
		k = strings.TrimPrefix(k, c.namespace)
		st.TotalEntries++
		switch {
		case strings.HasPrefix(k, domain.WarehousePrefix):
			st.WarehouseEntries++
		case strings.HasPrefix(k, domain.DrivingPrefix):
			st.DrivingEntries++
		}
	}
	st.ActiveEntries = st.TotalEntries
	return st, nil
}

func (c *RedisCache) scan(ctx context.Context, match string) ([]string, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, match, c.scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis cache scan %s: %w", match, err)
	}
	return keys, nil
}
