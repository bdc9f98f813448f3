package application

import (
	"context"
	"time"

	"warehousenow/middleware/ratelimit/domain"

	"github.com/charmbracelet/log"
)

const defaultRetryAfter = time.Second

// Guard consulta o limiter do cliente e registra a decisão nas estatísticas.
type Guard struct {
	Limiters   domain.LimiterStore
	Stats      domain.StatsStore
	RetryAfter time.Duration
	Logger     *log.Logger
	Now        func() time.Time
}

func (g Guard) Check(ctx context.Context, req domain.Request) domain.Decision {
	dec := g.decide(req.Key)
	if g.Stats != nil {
		now := time.Now
		if g.Now != nil {
			now = g.Now
		}
		err := g.Stats.Record(ctx, domain.StatsEvent{Request: req, Allowed: dec.Allowed, At: now()})
		if err != nil && g.Logger != nil {
			g.Logger.Warn("rate limit stats not recorded", "key", req.Key, "err", err)
		}
	}
	return dec
}

func (g Guard) decide(key domain.Key) domain.Decision {
	if g.Limiters == nil {
		return domain.Decision{Allowed: true}
	}
	lim := g.Limiters.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	retry := g.RetryAfter
	if retry <= 0 {
		retry = defaultRetryAfter
	}
	return domain.Decision{RetryAfter: retry}
}
