package application

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"warehousenow/warehouse/domain"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRadiusMiles = 50.0
	// pré-filtro em linha reta: rota de carro raramente passa de 2x
	prefilterFactor = 2.0

	drivingTTL = 24 * time.Hour
	geocodeTTL = 7 * 24 * time.Hour
)

// InvalidZipMessage vai no campo error quando o CEP de origem não existe.
const InvalidZipMessage = "Invalid ZIP code"

// WarehouseLister é o que a busca precisa da listagem (WarehouseService).
type WarehouseLister interface {
	List(ctx context.Context, force bool) ([]domain.Record, error)
}

// NearbyService encontra armazéns dentro de um raio de carro a partir de um CEP.
type NearbyService struct {
	Warehouses    WarehouseLister
	Geocoder      domain.Geocoder
	Router        domain.Router
	Cache         domain.Cache
	MaxConcurrent int
	Logger        *log.Logger
}

type candidate struct {
	record domain.Record
	coords domain.Coordinates
	zip    string
	route  domain.Route
	ok     bool
}

// Find executa a busca:
//  1. geocodifica o CEP de origem
//  2. pré-filtra por haversine até 2x o raio
//  3. calcula rotas (no máximo MaxConcurrent em paralelo, com cache)
//  4. mantém quem está dentro do raio e ordena por tier/tempo/distância
func (s NearbyService) Find(ctx context.Context, zip string, radiusMiles float64) (domain.NearbyResult, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return domain.NearbyResult{}, fmt.Errorf("zip_code is required: %w", domain.ErrInvalidInput)
	}
	if radiusMiles <= 0 {
		return domain.NearbyResult{}, fmt.Errorf("radius_miles must be > 0: %w", domain.ErrInvalidInput)
	}
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	result := domain.NearbyResult{OriginZip: zip, Warehouses: []domain.NearbyWarehouse{}}

	origin, ok, err := s.geocode(ctx, zip)
	if err != nil {
		return domain.NearbyResult{}, err
	}
	if !ok {
		result.Error = InvalidZipMessage
		return result, nil
	}

	records, err := s.Warehouses.List(ctx, false)
	if err != nil {
		return domain.NearbyResult{}, err
	}

	var cands []*candidate
	withCoords := 0
	for _, r := range records {
		loc, ok := r.Location()
		if !ok {
			continue
		}
		withCoords++
		if domain.Haversine(origin, loc) <= radiusMiles*prefilterFactor {
			cands = append(cands, &candidate{record: r, coords: loc, zip: r.Text("ZIP")})
		}
	}
	logger.Debug("nearby prefilter",
		"origin", zip,
		"warehouses", len(records),
		"with_coords", withCoords,
		"candidates", len(cands),
	)
	if len(cands) == 0 {
		return result, nil
	}

	if err := s.routeAll(ctx, zip, origin, cands, logger); err != nil {
		return domain.NearbyResult{}, err
	}

	for _, c := range cands {
		if !c.ok || c.route.DistanceMiles > radiusMiles {
			continue
		}
		tags := domain.MissingFields(c.record.Fields)
		result.Warehouses = append(result.Warehouses, domain.NearbyWarehouse{
			Record:          c.record,
			DistanceMiles:   c.route.DistanceMiles,
			DurationMinutes: c.route.DurationMinutes,
			TierRank:        domain.TierRank(c.record.Text("Tier")),
			Tags:            tags,
			HasMissedFields: len(tags) > 0,
			WarehouseID:     c.record.Text("WarehouseID"),
		})
	}

	slices.SortStableFunc(result.Warehouses, func(a, b domain.NearbyWarehouse) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return result, nil
}

// routeAll preenche a rota de cada candidato. Falha individual só descarta
// o candidato; cancelamento do ctx aborta a busca.
func (s NearbyService) routeAll(ctx context.Context, originZip string, origin domain.Coordinates, cands []*candidate, logger *log.Logger) error {
	limit := s.MaxConcurrent
	if limit <= 0 {
		limit = 5
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for _, c := range cands {
		g.Go(func() error {
			route, err := s.route(ctx, originZip, origin, c)
			if err != nil {
				logger.Debug("route lookup failed", "warehouse", c.record.ID, "err", err)
				return nil
			}
			c.route, c.ok = route, true
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func (s NearbyService) route(ctx context.Context, originZip string, origin domain.Coordinates, c *candidate) (domain.Route, error) {
	dest := c.zip
	if dest == "" {
		dest = c.coords.String()
	}
	key := DrivingKey(originZip, dest)

	if s.Cache != nil {
		var cached domain.Route
		if ok, err := s.Cache.Get(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	route, err := s.Router.Route(ctx, origin, c.coords)
	if err != nil {
		return domain.Route{}, err
	}
	if s.Cache != nil {
		_ = s.Cache.Set(ctx, key, route, drivingTTL)
	}
	return route, nil
}

func (s NearbyService) geocode(ctx context.Context, zip string) (domain.Coordinates, bool, error) {
	key := domain.GeocodePrefix + zip
	if s.Cache != nil {
		var cached domain.Coordinates
		if ok, err := s.Cache.Get(ctx, key, &cached); err == nil && ok {
			return cached, true, nil
		}
	}

	c, ok, err := s.Geocoder.Geocode(ctx, zip)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode origin %s: %w", zip, err)
	}
	if ok && s.Cache != nil {
		_ = s.Cache.Set(ctx, key, c, geocodeTTL)
	}
	return c, ok, nil
}

// DrivingKey gera a mesma chave nos dois sentidos da rota.
func DrivingKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return domain.DrivingPrefix + a + ":" + b
}
