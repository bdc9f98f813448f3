package application

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"warehousenow/warehouse/domain"
	"warehousenow/warehouse/infra"
)

var dallas = domain.Coordinates{Lat: 32.7767, Lng: -96.7970}

func nearbyFixture() (NearbyService, *fakeSource, *fakeRouter) {
	// FortWorth ~30mi, Plano ~17mi, Waco ~88mi, Houston ~225mi
	fortWorth := domain.Coordinates{Lat: 32.7555, Lng: -97.3308}
	plano := domain.Coordinates{Lat: 33.0198, Lng: -96.6989}
	waco := domain.Coordinates{Lat: 31.5493, Lng: -97.1467}
	houston := domain.Coordinates{Lat: 29.7604, Lng: -95.3698}
	denton := domain.Coordinates{Lat: 33.2148, Lng: -97.1331}

	src := &fakeSource{records: []domain.Record{
		warehouse("silver-plano", "Silver", "75074", plano.Lat, plano.Lng),
		warehouse("gold-fw", "Gold", "76102", fortWorth.Lat, fortWorth.Lng),
		warehouse("gold-waco", "Gold", "76701", waco.Lat, waco.Lng),
		warehouse("gold-houston", "Gold", "77002", houston.Lat, houston.Lng),
		warehouse("bronze-denton", "Bronze", "76201", denton.Lat, denton.Lng),
		{ID: "no-coords", Fields: map[string]any{"Tier": "Gold"}},
	}}
	router := &fakeRouter{
		routes: map[domain.Coordinates]domain.Route{
			fortWorth: {DistanceMiles: 32, DurationMinutes: 35},
			plano:     {DistanceMiles: 20, DurationMinutes: 25},
			waco:      {DistanceMiles: 95, DurationMinutes: 90}, // fora do raio de 50
		},
		err: map[domain.Coordinates]error{
			denton: errors.New("no route"),
		},
	}
	geo := &fakeGeocoder{coords: map[string]domain.Coordinates{"75201": dallas}}

	svc := NearbyService{
		Warehouses: NewWarehouseService(src, infra.NewMemoryCache()),
		Geocoder:   geo,
		Router:     router,
		Cache:      infra.NewMemoryCache(),
	}
	return svc, src, router
}

func ids(ws []domain.NearbyWarehouse) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.ID)
	}
	return out
}

func TestNearby_FiltersAndOrders(t *testing.T) {
	svc, _, router := nearbyFixture()

	res, err := svc.Find(context.Background(), " 75201 ", DefaultRadiusMiles)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if res.OriginZip != "75201" || res.Error != "" {
		t.Fatalf("unexpected result header %+v", res)
	}
	if got := ids(res.Warehouses); !slices.Equal(got, []string{"gold-fw", "silver-plano"}) {
		t.Fatalf("unexpected warehouses %v", got)
	}

	// houston fica fora do pré-filtro (2x raio) e nem chega ao router
	if got := router.calls.Load(); got != 4 {
		t.Fatalf("expected 4 route lookups (fw, plano, waco, denton), got %d", got)
	}

	fw := res.Warehouses[0]
	if fw.TierRank != 0 || fw.DistanceMiles != 32 || fw.DurationMinutes != 35 {
		t.Fatalf("unexpected annotation %+v", fw)
	}
	if fw.WarehouseID != "gold-fw-wid" {
		t.Fatalf("unexpected warehouse id %q", fw.WarehouseID)
	}
	if !fw.HasMissedFields || !slices.Contains(fw.Tags, "City") || slices.Contains(fw.Tags, "Tier") {
		t.Fatalf("unexpected tags %v", fw.Tags)
	}
}

func TestNearby_UsesRouteCacheOnSecondSearch(t *testing.T) {
	svc, _, router := nearbyFixture()
	ctx := context.Background()

	if _, err := svc.Find(ctx, "75201", DefaultRadiusMiles); err != nil {
		t.Fatalf("Find: %v", err)
	}
	first := router.calls.Load()
	if _, err := svc.Find(ctx, "75201", DefaultRadiusMiles); err != nil {
		t.Fatalf("Find: %v", err)
	}
	// denton falhou e não foi cacheado: só ele é consultado de novo
	if got := router.calls.Load() - first; got != 1 {
		t.Fatalf("expected 1 uncached lookup on second search, got %d", got)
	}
}

func TestNearby_InvalidZip(t *testing.T) {
	svc, src, _ := nearbyFixture()

	res, err := svc.Find(context.Background(), "00000", 50)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if res.Error != InvalidZipMessage {
		t.Fatalf("expected invalid zip message, got %q", res.Error)
	}
	if res.Warehouses == nil || len(res.Warehouses) != 0 {
		t.Fatalf("expected empty list, got %#v", res.Warehouses)
	}
	if src.Calls() != 0 {
		t.Fatalf("expected no warehouse listing for invalid zip")
	}
}

func TestNearby_ValidatesInput(t *testing.T) {
	svc, _, _ := nearbyFixture()

	if _, err := svc.Find(context.Background(), "  ", 50); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty zip, got %v", err)
	}
	if _, err := svc.Find(context.Background(), "75201", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero radius, got %v", err)
	}
}

func TestNearby_GeocoderErrorPropagates(t *testing.T) {
	svc, _, _ := nearbyFixture()
	svc.Geocoder = &fakeGeocoder{err: domain.ErrUpstream}

	if _, err := svc.Find(context.Background(), "75201", 50); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestNearby_RespectsConcurrencyLimit(t *testing.T) {
	var records []domain.Record
	routes := map[domain.Coordinates]domain.Route{}
	for i := 0; i < 20; i++ {
		c := domain.Coordinates{Lat: dallas.Lat + float64(i+1)*0.01, Lng: dallas.Lng}
		records = append(records, warehouse("w", "Gold", "", c.Lat, c.Lng))
		routes[c] = domain.Route{DistanceMiles: 1, DurationMinutes: 1}
	}
	router := &fakeRouter{routes: routes, delay: 5 * time.Millisecond}
	svc := NearbyService{
		Warehouses:    NewWarehouseService(&fakeSource{records: records}, infra.NewMemoryCache()),
		Geocoder:      &fakeGeocoder{coords: map[string]domain.Coordinates{"75201": dallas}},
		Router:        router,
		MaxConcurrent: 3,
	}

	res, err := svc.Find(context.Background(), "75201", 50)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(res.Warehouses) != 20 {
		t.Fatalf("expected 20 warehouses, got %d", len(res.Warehouses))
	}
	if got := router.maxSeen.Load(); got > 3 {
		t.Fatalf("expected at most 3 concurrent lookups, saw %d", got)
	}
}

func TestNearby_CanceledContext(t *testing.T) {
	svc, _, _ := nearbyFixture()
	svc.Router = &fakeRouter{delay: 20 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// geocode vem do fake (ignora ctx); a listagem também; o ctx cancelado
	// precisa abortar a busca
	if _, err := svc.Find(ctx, "75201", 50); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDrivingKey_IsSymmetric(t *testing.T) {
	if DrivingKey("75201", "76102") != DrivingKey("76102", "75201") {
		t.Fatalf("expected symmetric key")
	}
	if got := DrivingKey("76102", "75201"); got != "driving:75201:76102" {
		t.Fatalf("unexpected key %q", got)
	}
}
