package domain

import (
	"context"
	"time"
)

// Prefixos das chaves de cache.
const (
	WarehousePrefix = "warehouses:"
	DrivingPrefix   = "driving:"
	GeocodePrefix   = "geocode:"
)

// Cache guarda valores serializáveis com TTL. Get devolve ok=false quando a
// chave não existe ou expirou.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (ok bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefixes ...string) (int, error)
	Stats(ctx context.Context) (CacheStats, error)
}

type CacheStats struct {
	TotalEntries     int `json:"total_entries"`
	ExpiredEntries   int `json:"expired_entries"`
	ActiveEntries    int `json:"active_entries"`
	WarehouseEntries int `json:"warehouse_entries"`
	DrivingEntries   int `json:"driving_entries"`
}
