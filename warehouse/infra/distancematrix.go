package infra

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"warehousenow/warehouse/domain"
)

const DefaultGoogleMapsURL = "https://maps.googleapis.com"

// DistanceMatrixRouter consulta a Distance Matrix API do Google (modo carro).
type DistanceMatrixRouter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type DistanceMatrixOption func(*DistanceMatrixRouter)

func WithGoogleMapsURL(u string) DistanceMatrixOption {
	return func(r *DistanceMatrixRouter) { r.baseURL = strings.TrimRight(u, "/") }
}

func NewDistanceMatrixRouter(apiKey string, opts ...DistanceMatrixOption) *DistanceMatrixRouter {
	r := &DistanceMatrixRouter{
		baseURL:    DefaultGoogleMapsURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type distanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"` // metros
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"` // segundos
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (r *DistanceMatrixRouter) Route(ctx context.Context, from, to domain.Coordinates) (domain.Route, error) {
	q := url.Values{}
	q.Set("origins", from.String())
	q.Set("destinations", to.String())
	q.Set("mode", "driving")
	q.Set("key", r.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/maps/api/distancematrix/json?"+q.Encode(), nil)
	if err != nil {
		return domain.Route{}, fmt.Errorf("distance matrix: build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return domain.Route{}, fmt.Errorf("%w: distance matrix: %v", domain.ErrUpstream, err)
	}

	var body distanceMatrixResponse
	if err := decodeResponse(resp, "distance matrix", &body); err != nil {
		return domain.Route{}, err
	}
	if body.Status != "OK" {
		return domain.Route{}, fmt.Errorf("%w: distance matrix status %s: %s", domain.ErrUpstream, body.Status, body.ErrorMessage)
	}
	if len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 {
		return domain.Route{}, fmt.Errorf("%w: distance matrix returned no elements", domain.ErrUpstream)
	}
	el := body.Rows[0].Elements[0]
	if el.Status != "OK" {
		return domain.Route{}, fmt.Errorf("route %s -> %s: %w (%s)", from, to, domain.ErrNotFound, el.Status)
	}
	return domain.RouteFromMetric(el.Distance.Value, el.Duration.Value), nil
}

// StraightLineRouter estima a rota pela distância haversine a uma velocidade
// média fixa. Usado quando não há chave do Google configurada.
type StraightLineRouter struct {
	SpeedMPH float64
}

func (r StraightLineRouter) Route(_ context.Context, from, to domain.Coordinates) (domain.Route, error) {
	speed := r.SpeedMPH
	if speed <= 0 {
		speed = 50
	}
	miles := domain.Haversine(from, to)
	return domain.Route{DistanceMiles: miles, DurationMinutes: miles / speed * 60}, nil
}
