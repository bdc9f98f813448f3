package domain

import "time"

// Key identifica o cliente (IP, API key).
type Key string

// Limiter decide se uma ação é permitida agora (token bucket em infra).
type Limiter interface {
	Allow() bool
}

type LimiterStore interface {
	Get(Key) Limiter
}

// Request é o que o limitador sabe de uma chamada.
type Request struct {
	Key    Key
	Method string
	Path   string
}

type Decision struct {
	Allowed bool
	// RetryAfter só vale quando Allowed=false.
	RetryAfter time.Duration
}
