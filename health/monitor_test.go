package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

var errProbe = errors.New("probe failed")

func TestMonitor_StartsInStarting(t *testing.T) {
	m := NewMonitor(DefaultPolicy(), time.Now())
	st, streak, _ := m.Snapshot()
	if st != StatusStarting {
		t.Fatalf("expected starting, got %s", st)
	}
	if streak != 0 {
		t.Fatalf("expected streak 0, got %d", streak)
	}
}

func TestMonitor_ThreeConsecutiveFailuresAfterStartPeriod(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMonitor(DefaultPolicy(), start)

	// verificações a cada 30s, a primeira após 30s (fora dos 5s iniciais)
	for i := 1; i <= 2; i++ {
		st, _ := m.Observe(start.Add(time.Duration(i)*30*time.Second), errProbe)
		if st != StatusStarting {
			t.Fatalf("failure %d: expected starting, got %s", i, st)
		}
	}
	st, changed := m.Observe(start.Add(90*time.Second), errProbe)
	if st != StatusUnhealthy || !changed {
		t.Fatalf("expected transition to unhealthy, got %s changed=%v", st, changed)
	}
}

func TestMonitor_FailuresInsideStartPeriodDoNotCount(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMonitor(Policy{Interval: time.Second, Timeout: time.Second, StartPeriod: 5 * time.Second, Retries: 3}, start)

	for i := 0; i < 4; i++ {
		m.Observe(start.Add(time.Duration(i)*time.Second), errProbe)
	}
	st, streak, _ := m.Snapshot()
	if st != StatusStarting || streak != 0 {
		t.Fatalf("expected starting with streak 0, got %s streak=%d", st, streak)
	}

	m.Observe(start.Add(6*time.Second), errProbe)
	m.Observe(start.Add(7*time.Second), errProbe)
	st, _ = m.Observe(start.Add(8*time.Second), errProbe)
	if st != StatusUnhealthy {
		t.Fatalf("expected unhealthy after 3 counted failures, got %s", st)
	}
}

func TestMonitor_SuccessEndsStartPeriodEarly(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMonitor(Policy{Interval: time.Second, Timeout: time.Second, StartPeriod: time.Minute, Retries: 2}, start)

	st, changed := m.Observe(start.Add(time.Second), nil)
	if st != StatusHealthy || !changed {
		t.Fatalf("expected healthy transition, got %s changed=%v", st, changed)
	}

	// ainda dentro do StartPeriod, mas já houve sucesso: falhas contam
	m.Observe(start.Add(2*time.Second), errProbe)
	st, _ = m.Observe(start.Add(3*time.Second), errProbe)
	if st != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", st)
	}
}

func TestMonitor_SuccessResetsStreak(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMonitor(DefaultPolicy(), start)

	m.Observe(start.Add(30*time.Second), nil)
	m.Observe(start.Add(60*time.Second), errProbe)
	m.Observe(start.Add(90*time.Second), errProbe)
	m.Observe(start.Add(120*time.Second), nil)
	m.Observe(start.Add(150*time.Second), errProbe)
	st, streak, err := m.Snapshot()
	if st != StatusHealthy {
		t.Fatalf("expected healthy, got %s", st)
	}
	if streak != 1 {
		t.Fatalf("expected streak 1, got %d", streak)
	}
	if !errors.Is(err, errProbe) {
		t.Fatalf("expected last error to be kept, got %v", err)
	}
}

func TestMonitor_UnhealthyRecoversOnSuccess(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMonitor(Policy{Interval: time.Second, Timeout: time.Second, Retries: 1}, start)

	if st, _ := m.Observe(start.Add(time.Second), errProbe); st != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", st)
	}
	if st, changed := m.Observe(start.Add(2*time.Second), nil); st != StatusHealthy || !changed {
		t.Fatalf("expected recovery to healthy, got %s changed=%v", st, changed)
	}
}

func TestMonitor_RunStopsWhenUnhealthy(t *testing.T) {
	m := NewMonitor(Policy{Interval: 5 * time.Millisecond, Timeout: 5 * time.Millisecond, Retries: 3}, time.Now())

	var calls atomic.Int32
	p := ProberFunc(func(context.Context) error {
		calls.Add(1)
		return errProbe
	})

	var transitions []Status
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := m.Run(ctx, p, func(s Status, _ error) { transitions = append(transitions, s) })
	if !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("expected ErrUnhealthy, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 probes, got %d", got)
	}
	if len(transitions) != 1 || transitions[0] != StatusUnhealthy {
		t.Fatalf("expected single transition to unhealthy, got %v", transitions)
	}
}

func TestMonitor_RunReturnsOnCancel(t *testing.T) {
	m := NewMonitor(Policy{Interval: 5 * time.Millisecond, Timeout: 5 * time.Millisecond, Retries: 3}, time.Now())
	p := ProberFunc(func(context.Context) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := m.Run(ctx, p, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if st, _, _ := m.Snapshot(); st != StatusHealthy {
		t.Fatalf("expected healthy, got %s", st)
	}
}

func TestPolicy_WithDefaults(t *testing.T) {
	p := Policy{StartPeriod: -time.Second}.WithDefaults()
	def := DefaultPolicy()
	if p.Interval != def.Interval || p.Timeout != def.Timeout || p.Retries != def.Retries {
		t.Fatalf("expected defaults, got %+v", p)
	}
	if p.StartPeriod != 0 {
		t.Fatalf("expected negative start period to clamp to 0, got %s", p.StartPeriod)
	}
}
