package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"warehousenow/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStats compartilha os contadores entre réplicas.
//
// Layout das chaves (prefixo padrão "warehousenow:ratelimit"):
//
//	<prefix>:total                hash allowed|denied, cumulativo
//	<prefix>:route                hash "<METHOD> <path>:allowed|denied"
//	<prefix>:minute:<yyyymmddhhmm> hash allowed|denied, expira em ttl
type RedisStats struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type RedisStatsOption func(*RedisStats)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStats) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStats) { s.ttl = d }
}

func NewRedisStats(rdb redis.UniversalClient, opts ...RedisStatsOption) *RedisStats {
	s := &RedisStats{rdb: rdb, prefix: "warehousenow:ratelimit", ttl: 24 * time.Hour}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func outcome(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func (s *RedisStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := outcome(ev.Allowed)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)
	if route := strings.TrimSpace(domain.RouteName(ev.Method, ev.Path)); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}
	minute := s.prefix + ":minute:" + at.UTC().Format("200601021504")
	pipe.HIncrBy(ctx, minute, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, minute, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record rate limit stats: %w", err)
	}
	return nil
}

func (s *RedisStats) Snapshot(ctx context.Context) (domain.StatsSnapshot, error) {
	total, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("read rate limit totals: %w", err)
	}
	routes, err := s.rdb.HGetAll(ctx, s.prefix+":route").Result()
	if err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("read rate limit routes: %w", err)
	}

	snap := domain.StatsSnapshot{ByRoute: make(map[string]domain.Counters, len(routes)/2)}
	snap.Total.Allowed, _ = strconv.ParseInt(total["allowed"], 10, 64)
	snap.Total.Denied, _ = strconv.ParseInt(total["denied"], 10, 64)

	for field, raw := range routes {
		i := strings.LastIndexByte(field, ':')
		if i < 0 {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		route, kind := field[:i], field[i+1:]
		c := snap.ByRoute[route]
		switch kind {
		case "allowed":
			c.Allowed = n
		case "denied":
			c.Denied = n
		default:
			continue
		}
		snap.ByRoute[route] = c
	}
	return snap, nil
}
