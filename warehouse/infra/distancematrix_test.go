package infra

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"warehousenow/warehouse/domain"
)

func TestDistanceMatrix_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/maps/api/distancematrix/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q.Get("origins") != "32.7,-96.8" || q.Get("destinations") != "33,-97" || q.Get("key") != "k" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK","distance":{"value":16093.44},"duration":{"value":900}}]}]}`))
	}))
	defer srv.Close()

	r := NewDistanceMatrixRouter("k", WithGoogleMapsURL(srv.URL))
	got, err := r.Route(context.Background(), domain.Coordinates{Lat: 32.7, Lng: -96.8}, domain.Coordinates{Lat: 33, Lng: -97})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if math.Abs(got.DistanceMiles-10) > 1e-9 || got.DurationMinutes != 15 {
		t.Fatalf("unexpected route %+v", got)
	}
}

func TestDistanceMatrix_ElementNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"ZERO_RESULTS"}]}]}`))
	}))
	defer srv.Close()

	r := NewDistanceMatrixRouter("k", WithGoogleMapsURL(srv.URL))
	_, err := r.Route(context.Background(), domain.Coordinates{Lat: 1, Lng: 1}, domain.Coordinates{Lat: 2, Lng: 2})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDistanceMatrix_RequestDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key","rows":[]}`))
	}))
	defer srv.Close()

	r := NewDistanceMatrixRouter("k", WithGoogleMapsURL(srv.URL))
	_, err := r.Route(context.Background(), domain.Coordinates{Lat: 1, Lng: 1}, domain.Coordinates{Lat: 2, Lng: 2})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestStraightLineRouter(t *testing.T) {
	a := domain.Coordinates{Lat: 40.7128, Lng: -74.0060}
	b := domain.Coordinates{Lat: 40.7128, Lng: -73.0}
	got, err := StraightLineRouter{SpeedMPH: 60}.Route(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	want := domain.Haversine(a, b)
	if got.DistanceMiles != want {
		t.Fatalf("expected %.3f miles, got %.3f", want, got.DistanceMiles)
	}
	if math.Abs(got.DurationMinutes-want) > 1e-9 {
		t.Fatalf("at 60 mph minutes should equal miles, got %.3f", got.DurationMinutes)
	}
}
