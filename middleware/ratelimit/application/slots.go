package application

import (
	"context"
	"time"

	"warehousenow/middleware/ratelimit/domain"
)

// Slots aplica o timeout de espera sobre um SlotPool.
// AcquireTimeout <= 0 espera até o ctx da requisição encerrar.
type Slots struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

func (s Slots) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}
	return s.Pool.Acquire(ctx)
}
