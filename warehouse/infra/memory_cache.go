package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"warehousenow/warehouse/domain"
)

// MemoryCache é um cache em memória com TTL por chave.
//
// Os valores são guardados serializados em JSON: assim o comportamento é o
// mesmo do RedisCache (o chamador nunca compartilha ponteiro com o cache).
type MemoryCache struct {
	mu           sync.Mutex
	entries      map[string]cacheEntry
	now          func() time.Time
	cleanupEvery time.Duration
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

type MemoryCacheOption func(*MemoryCache)

func WithCacheCleanupEvery(d time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) { c.cleanupEvery = d }
}

// WithCacheClock troca o relógio (testes).
func WithCacheClock(now func() time.Time) MemoryCacheOption {
	return func(c *MemoryCache) { c.now = now }
}

func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{
		entries:      make(map[string]cacheEntry),
		now:          time.Now,
		cleanupEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	ent, ok := c.entries[key]
	if ok && !c.now().Before(ent.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(ent.value, dst); err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: b, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefixes ...string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if hasAnyPrefix(k, prefixes) {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

func (c *MemoryCache) Stats(_ context.Context) (domain.CacheStats, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var st domain.CacheStats
	for k, ent := range c.entries {
		st.TotalEntries++
		if !now.Before(ent.expiresAt) {
			st.ExpiredEntries++
		}
		switch {
		case strings.HasPrefix(k, domain.WarehousePrefix):
			st.WarehouseEntries++
		case strings.HasPrefix(k, domain.DrivingPrefix):
			st.DrivingEntries++
		}
	}
	st.ActiveEntries = st.TotalEntries - st.ExpiredEntries
	return st, nil
}

// Cleanup remove as entradas expiradas.
func (c *MemoryCache) Cleanup() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, ent := range c.entries {
		if !now.Before(ent.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// StartJanitor limpa entradas expiradas periodicamente até o ctx encerrar.
func (c *MemoryCache) StartJanitor(ctx context.Context) {
	if c.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(c.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Cleanup()
			}
		}
	}()
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
