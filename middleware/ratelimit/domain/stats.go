package domain

import (
	"context"
	"time"
)

type StatsEvent struct {
	Request
	Allowed bool
	At      time.Time
}

// StatsStore persiste decisões. Falha de gravação não derruba a requisição.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

func (c *Counters) Add(allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

// StatsSnapshot agrega as decisões; ByRoute usa "METHOD /path" como chave.
type StatsSnapshot struct {
	Total   Counters            `json:"total"`
	ByRoute map[string]Counters `json:"by_route"`
}

type StatsReader interface {
	Snapshot(ctx context.Context) (StatsSnapshot, error)
}

func RouteName(method, path string) string {
	return method + " " + path
}
