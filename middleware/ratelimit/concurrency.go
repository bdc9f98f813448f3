package ratelimit

import (
	"net/http"
	"time"

	"warehousenow/middleware/ratelimit/application"
	"warehousenow/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
	Exempt         func(*http.Request) bool
}

// ConcurrencyMiddleware limita requisições simultâneas; Max <= 0 desliga.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	slots := application.Slots{
		Pool:           infra.NewSemaphore(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Exempt != nil && opts.Exempt(r) {
				next.ServeHTTP(w, r)
				return
			}
			release, ok := slots.Acquire(r.Context())
			if !ok {
				reject(w, http.StatusServiceUnavailable, "Server busy, retry later")
				return
			}
			defer release()
			next.ServeHTTP(w, r)
		})
	}
}
