package health

import "time"

const (
	// DefaultPath é a rota de saúde exposta pelo serviço.
	DefaultPath = "/health"
	// DefaultURL é o alvo do probe dentro do container.
	DefaultURL = "http://localhost:8080" + DefaultPath
)

// Policy descreve o agendamento das verificações.
//
// Semântica igual à do HEALTHCHECK do Docker:
//   - Interval: espera entre verificações (a primeira acontece após um Interval)
//   - Timeout: tempo máximo de uma verificação; estourar conta como falha
//   - StartPeriod: janela após o start em que falhas não contam
//   - Retries: falhas consecutivas para marcar unhealthy
type Policy struct {
	Interval    time.Duration
	Timeout     time.Duration
	StartPeriod time.Duration
	Retries     int
}

func DefaultPolicy() Policy {
	return Policy{
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		StartPeriod: 5 * time.Second,
		Retries:     3,
	}
}

// WithDefaults preenche campos zerados com os valores de DefaultPolicy.
// StartPeriod negativo vira zero.
func (p Policy) WithDefaults() Policy {
	def := DefaultPolicy()
	if p.Interval <= 0 {
		p.Interval = def.Interval
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	if p.StartPeriod < 0 {
		p.StartPeriod = 0
	}
	if p.Retries <= 0 {
		p.Retries = def.Retries
	}
	return p
}
