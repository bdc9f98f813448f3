package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProber_HealthyOn2xx(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	p := HTTPProber{URL: srv.URL + DefaultPath, Timeout: time.Second}
	if err := p.Probe(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
}

func TestHTTPProber_UnhealthyOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := HTTPProber{URL: srv.URL, Timeout: time.Second}.Probe(context.Background())
	if !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("expected ErrUnhealthy, got %v", err)
	}
}

func TestHTTPProber_UnhealthyOnTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := HTTPProber{URL: srv.URL, Timeout: 20 * time.Millisecond}.Probe(context.Background())
	if !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("expected ErrUnhealthy, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("expected probe to honor timeout")
	}
}

func TestHTTPProber_UnhealthyWhenNothingListens(t *testing.T) {
	srv := httptest.NewServer(Handler())
	url := srv.URL
	srv.Close()

	err := HTTPProber{URL: url, Timeout: time.Second}.Probe(context.Background())
	if !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("expected ErrUnhealthy, got %v", err)
	}
}
