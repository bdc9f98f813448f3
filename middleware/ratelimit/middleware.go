package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"warehousenow/middleware/ratelimit/application"
	"warehousenow/middleware/ratelimit/domain"

	"github.com/charmbracelet/log"
)

type Options struct {
	Store              domain.LimiterStore
	Stats              domain.StatsStore
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	// Exempt devolve true para requisições que não passam pelo limite.
	Exempt     func(*http.Request) bool
	RetryAfter time.Duration
	// Headers adiciona X-RateLimit-Limit/-Burst quando o store expõe a taxa.
	Headers bool
	Logger  *log.Logger
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = ClientKey(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	guard := application.Guard{
		Limiters:   opts.Store,
		Stats:      opts.Stats,
		RetryAfter: opts.RetryAfter,
		Logger:     opts.Logger,
	}
	info, hasInfo := opts.Store.(rateInfo)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Exempt != nil && opts.Exempt(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := opts.KeyFn(r)
			if opts.Headers && hasInfo {
				w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(info.RPS(), 'f', -1, 64))
				w.Header().Set("X-RateLimit-Burst", strconv.Itoa(info.Burst()))
			}

			dec := guard.Check(r.Context(), domain.Request{Key: domain.Key(key), Method: r.Method, Path: r.URL.Path})
			if !dec.Allowed {
				secs := int(math.Ceil(dec.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				if opts.Logger != nil {
					opts.Logger.Debug("rate limited", "key", key, "path", r.URL.Path)
				}
				reject(w, http.StatusTooManyRequests, "Too many requests, retry later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// reject responde no mesmo formato de erro da API ({"detail": ...}).
func reject(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
