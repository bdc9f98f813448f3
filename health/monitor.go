package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Status string

const (
	StatusStarting  Status = "starting"
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Monitor acumula resultados de verificações e decide o status.
//
// Regras:
//   - começa em starting
//   - sucesso => healthy, zera a sequência de falhas e encerra o período inicial
//   - falha dentro do StartPeriod (antes do primeiro sucesso) não conta
//   - fora disso, Retries falhas consecutivas => unhealthy
//
// Enquanto a sequência não atinge Retries o status anterior é mantido.
type Monitor struct {
	policy    Policy
	startedAt time.Time

	mu      sync.Mutex
	status  Status
	streak  int
	started bool
	lastErr error
}

func NewMonitor(policy Policy, startedAt time.Time) *Monitor {
	return &Monitor{
		policy:    policy.WithDefaults(),
		startedAt: startedAt,
		status:    StatusStarting,
	}
}

func (m *Monitor) Policy() Policy { return m.policy }

// Observe registra o resultado de uma verificação concluída em `at`.
// Retorna o novo status e se houve transição.
func (m *Monitor) Observe(at time.Time, err error) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.status
	m.lastErr = err

	if err == nil {
		m.streak = 0
		m.started = true
		m.status = StatusHealthy
		return m.status, prev != m.status
	}

	if !m.started && at.Sub(m.startedAt) < m.policy.StartPeriod {
		return m.status, false
	}

	m.streak++
	if m.streak >= m.policy.Retries {
		m.status = StatusUnhealthy
	}
	return m.status, prev != m.status
}

// Snapshot devolve status, falhas consecutivas e o último erro observado.
func (m *Monitor) Snapshot() (Status, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.streak, m.lastErr
}

// Run executa o prober a cada Interval até o ctx encerrar ou o status virar
// unhealthy. onChange (opcional) é chamado a cada transição.
//
// Retorna ctx.Err() quando cancelado, ou um erro embrulhando ErrUnhealthy.
func (m *Monitor) Run(ctx context.Context, p Prober, onChange func(Status, error)) error {
	t := time.NewTicker(m.policy.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		probeCtx, cancel := context.WithTimeout(ctx, m.policy.Timeout)
		err := p.Probe(probeCtx)
		cancel()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		status, changed := m.Observe(time.Now(), err)
		if changed && onChange != nil {
			onChange(status, err)
		}
		if status == StatusUnhealthy {
			_, streak, lastErr := m.Snapshot()
			return fmt.Errorf("%w after %d consecutive failures: %v", ErrUnhealthy, streak, lastErr)
		}
	}
}
