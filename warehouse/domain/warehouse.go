package domain

import (
	"context"
	"strings"
)

// WarehouseSource entrega a lista completa de armazéns.
type WarehouseSource interface {
	ListWarehouses(ctx context.Context) ([]Record, error)
}

// FilterFields são os campos usados nos filtros do front; os que faltam em
// um armazém viram tags.
var FilterFields = []string{
	"City",
	"State",
	"Zip",
	"Status",
	"Tier",
	"Hazmat",
	"Temp_Control",
	"Food_Grade",
	"Paper_Rolls",
	"Services",
	"Notes_Pricing",
	"Insurance",
}

// TierRank: menor = mais prioritário.
func TierRank(tier string) int {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "gold":
		return 0
	case "silver":
		return 1
	case "bronze":
		return 2
	default:
		return 99
	}
}

// MissingFields lista os FilterFields ausentes ou vazios ("" / [] / {}).
func MissingFields(fields map[string]any) []string {
	missing := make([]string, 0, len(FilterFields))
	for _, name := range FilterFields {
		if isEmpty(fields[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// NearbyWarehouse é um armazém dentro do raio, com a rota até a origem.
type NearbyWarehouse struct {
	Record

	DistanceMiles   float64  `json:"distance_miles"`
	DurationMinutes float64  `json:"duration_minutes"`
	TierRank        int      `json:"tier_rank"`
	Tags            []string `json:"tags"`
	HasMissedFields bool     `json:"has_missed_fields"`
	WarehouseID     string   `json:"warehouse_id"`
}

type NearbyResult struct {
	OriginZip  string            `json:"origin_zip"`
	Warehouses []NearbyWarehouse `json:"warehouses"`
	Error      string            `json:"error,omitempty"`
}

// Less ordena por tier, depois tempo de viagem, depois distância.
func (a NearbyWarehouse) Less(b NearbyWarehouse) bool {
	if a.TierRank != b.TierRank {
		return a.TierRank < b.TierRank
	}
	if a.DurationMinutes != b.DurationMinutes {
		return a.DurationMinutes < b.DurationMinutes
	}
	return a.DistanceMiles < b.DistanceMiles
}
