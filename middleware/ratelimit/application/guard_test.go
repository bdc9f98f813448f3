package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"warehousenow/middleware/ratelimit/domain"
)

type fixedLimiter bool

func (f fixedLimiter) Allow() bool { return bool(f) }

type fixedStore struct{ lim domain.Limiter }

func (s fixedStore) Get(domain.Key) domain.Limiter { return s.lim }

type recordingStats struct {
	events []domain.StatsEvent
	err    error
}

func (r *recordingStats) Record(_ context.Context, ev domain.StatsEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestGuard_AllowsWithoutLimiters(t *testing.T) {
	dec := Guard{}.Check(context.Background(), domain.Request{Key: "k"})
	if !dec.Allowed || dec.RetryAfter != 0 {
		t.Fatalf("expected allowed without retry, got %+v", dec)
	}
}

func TestGuard_DeniedUsesDefaultRetryAfter(t *testing.T) {
	g := Guard{Limiters: fixedStore{lim: fixedLimiter(false)}}
	dec := g.Check(context.Background(), domain.Request{Key: "k"})
	if dec.Allowed {
		t.Fatalf("expected denied")
	}
	if dec.RetryAfter != time.Second {
		t.Fatalf("expected default RetryAfter=1s, got %s", dec.RetryAfter)
	}
}

func TestGuard_DeniedUsesConfiguredRetryAfter(t *testing.T) {
	g := Guard{Limiters: fixedStore{lim: fixedLimiter(false)}, RetryAfter: 2500 * time.Millisecond}
	if dec := g.Check(context.Background(), domain.Request{Key: "k"}); dec.RetryAfter != 2500*time.Millisecond {
		t.Fatalf("expected RetryAfter=2.5s, got %s", dec.RetryAfter)
	}
}

func TestGuard_RecordsStats(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stats := &recordingStats{}
	g := Guard{Limiters: fixedStore{lim: fixedLimiter(true)}, Stats: stats, Now: func() time.Time { return at }}

	g.Check(context.Background(), domain.Request{Key: "10.0.0.1", Method: "GET", Path: "/warehouses"})

	if len(stats.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(stats.events))
	}
	ev := stats.events[0]
	if !ev.Allowed || ev.Path != "/warehouses" || !ev.At.Equal(at) {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestGuard_StatsFailureDoesNotDeny(t *testing.T) {
	g := Guard{Limiters: fixedStore{lim: fixedLimiter(true)}, Stats: &recordingStats{err: errors.New("redis down")}}
	if dec := g.Check(context.Background(), domain.Request{Key: "k"}); !dec.Allowed {
		t.Fatalf("stats failure must not deny the request")
	}
}
