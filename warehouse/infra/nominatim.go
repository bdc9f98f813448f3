package infra

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"warehousenow/warehouse/domain"

	"golang.org/x/time/rate"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder resolve CEPs americanos no Nominatim (OpenStreetMap).
// A política de uso pede no máximo 1 req/s e um User-Agent identificável.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	country    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type NominatimOption func(*NominatimGeocoder)

func WithNominatimURL(u string) NominatimOption {
	return func(g *NominatimGeocoder) { g.baseURL = strings.TrimRight(u, "/") }
}

func WithNominatimUserAgent(ua string) NominatimOption {
	return func(g *NominatimGeocoder) { g.userAgent = ua }
}

func WithNominatimRate(rps float64) NominatimOption {
	return func(g *NominatimGeocoder) { g.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

func NewNominatimGeocoder(opts ...NominatimOption) *NominatimGeocoder {
	g := &NominatimGeocoder{
		baseURL:    DefaultNominatimURL,
		userAgent:  "warehousenow",
		country:    "USA",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, zip string) (domain.Coordinates, bool, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode %s: %w", zip, err)
	}

	q := url.Values{}
	q.Set("postalcode", zip)
	q.Set("country", g.country)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode %s: build request: %w", zip, err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("%w: geocode %s: %v", domain.ErrUpstream, zip, err)
	}

	var places []nominatimPlace
	if err := decodeResponse(resp, "nominatim", &places); err != nil {
		return domain.Coordinates{}, false, err
	}
	if len(places) == 0 {
		return domain.Coordinates{}, false, nil
	}

	lat, err1 := strconv.ParseFloat(places[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(places[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return domain.Coordinates{}, false, fmt.Errorf("%w: nominatim returned malformed coordinates %q,%q", domain.ErrUpstream, places[0].Lat, places[0].Lon)
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, true, nil
}
