package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"warehousenow/warehouse/domain"
)

type fakeSource struct {
	mu      sync.Mutex
	records []domain.Record
	err     error
	calls   int
}

func (s *fakeSource) ListWarehouses(context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeGeocoder struct {
	coords map[string]domain.Coordinates
	err    error
	calls  atomic.Int32
}

func (g *fakeGeocoder) Geocode(_ context.Context, zip string) (domain.Coordinates, bool, error) {
	g.calls.Add(1)
	if g.err != nil {
		return domain.Coordinates{}, false, g.err
	}
	c, ok := g.coords[zip]
	return c, ok, nil
}

type fakeRouter struct {
	routes map[domain.Coordinates]domain.Route
	err    map[domain.Coordinates]error
	delay  time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (r *fakeRouter) Route(_ context.Context, _, to domain.Coordinates) (domain.Route, error) {
	r.calls.Add(1)
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		m := r.maxSeen.Load()
		if n <= m || r.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if err, ok := r.err[to]; ok {
		return domain.Route{}, err
	}
	return r.routes[to], nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func warehouse(id, tier, zip string, lat, lng float64) domain.Record {
	return domain.Record{ID: id, Fields: map[string]any{
		"Tier":        tier,
		"ZIP":         zip,
		"Latitude":    lat,
		"Longitude":   lng,
		"WarehouseID": id + "-wid",
	}}
}
