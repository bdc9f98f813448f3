package infra

import (
	"context"

	"warehousenow/middleware/ratelimit/domain"
)

// Semaphore é um SlotPool sobre channel bufferizado.
type Semaphore struct {
	slots chan struct{}
}

var _ domain.SlotPool = (*Semaphore)(nil)

func NewSemaphore(max int) *Semaphore {
	return &Semaphore{slots: make(chan struct{}, max)}
}

func (s *Semaphore) Acquire(ctx context.Context) (func(), bool) {
	select {
	case s.slots <- struct{}{}:
		return func() { <-s.slots }, true
	case <-ctx.Done():
		return nil, false
	}
}

func (s *Semaphore) InUse() int { return len(s.slots) }
