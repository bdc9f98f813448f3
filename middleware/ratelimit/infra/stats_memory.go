package infra

import (
	"context"
	"maps"
	"sync"

	"warehousenow/middleware/ratelimit/domain"
)

// MemoryStats conta decisões no processo. Zera a cada restart.
type MemoryStats struct {
	mu      sync.Mutex
	total   domain.Counters
	byRoute map[string]domain.Counters
}

func NewMemoryStats() *MemoryStats {
	return &MemoryStats{byRoute: make(map[string]domain.Counters)}
}

func (s *MemoryStats) Record(_ context.Context, ev domain.StatsEvent) error {
	route := domain.RouteName(ev.Method, ev.Path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.total.Add(ev.Allowed)
	c := s.byRoute[route]
	c.Add(ev.Allowed)
	s.byRoute[route] = c
	return nil
}

func (s *MemoryStats) Snapshot(context.Context) (domain.StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.StatsSnapshot{Total: s.total, ByRoute: maps.Clone(s.byRoute)}, nil
}
