package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnhealthy é retornado (embrulhado) por qualquer verificação que falhe.
var ErrUnhealthy = errors.New("unhealthy")

// Prober executa uma única verificação de saúde.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapta uma função para Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error { return f(ctx) }

// HTTPProber faz um GET no URL e considera saudável apenas status 2xx.
type HTTPProber struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

func (p HTTPProber) Probe(ctx context.Context) error {
	url := p.URL
	if url == "" {
		url = DefaultURL
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPolicy().Timeout
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrUnhealthy, url, resp.StatusCode)
	}
	return nil
}
