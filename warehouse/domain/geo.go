package domain

import (
	"context"
	"math"
	"strconv"
)

// EarthRadiusMiles usado no haversine.
const EarthRadiusMiles = 3958.8

const metersPerMile = 1609.344

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Route é o trajeto rodoviário entre dois pontos.
type Route struct {
	DistanceMiles   float64 `json:"distance_miles"`
	DurationMinutes float64 `json:"duration_minutes"`
}

func RouteFromMetric(meters, seconds float64) Route {
	return Route{DistanceMiles: meters / metersPerMile, DurationMinutes: seconds / 60}
}

// Geocoder resolve um CEP (ZIP) americano. ok=false quando o CEP não existe.
type Geocoder interface {
	Geocode(ctx context.Context, zip string) (c Coordinates, ok bool, err error)
}

// Router calcula a rota de carro entre dois pontos.
type Router interface {
	Route(ctx context.Context, from, to Coordinates) (Route, error)
}

// Haversine devolve a distância em linha reta, em milhas.
func Haversine(a, b Coordinates) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dphi := (b.Lat - a.Lat) * math.Pi / 180
	dlambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dlambda/2)*math.Sin(dlambda/2)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
