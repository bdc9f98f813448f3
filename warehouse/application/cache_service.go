package application

import (
	"context"
	"fmt"
	"time"

	"warehousenow/warehouse/domain"
)

// CacheStatus é o retrato do cache para monitoramento.
type CacheStatus struct {
	Stats           domain.CacheStats `json:"cache_stats"`
	LastSourceCheck *string           `json:"last_airtable_check"`
	CacheAgeHours   float64           `json:"cache_age_hours"`
	Recommendations []string          `json:"recommendations"`
}

// CacheStatus monta estatísticas e recomendações do cache.
func (s *WarehouseService) CacheStatus(ctx context.Context) (CacheStatus, error) {
	st, err := s.cache.Stats(ctx)
	if err != nil {
		return CacheStatus{}, fmt.Errorf("cache status: %w", err)
	}

	out := CacheStatus{Stats: st}
	if last := s.LastCheck(); !last.IsZero() {
		ts := last.UTC().Format(time.RFC3339)
		out.LastSourceCheck = &ts
		out.CacheAgeHours = s.now().Sub(last).Hours()
	}
	out.Recommendations = recommendations(out)
	return out, nil
}

func recommendations(cs CacheStatus) []string {
	recs := []string{}
	// sem nenhuma verificação na fonte o cache conta como velho
	if cs.LastSourceCheck == nil || cs.CacheAgeHours > 2 {
		recs = append(recs, "Consider refreshing cache - data is over 2 hours old")
	}
	if cs.Stats.ExpiredEntries > cs.Stats.ActiveEntries {
		recs = append(recs, "High expired entries - consider shorter TTL")
	}
	if cs.Stats.WarehouseEntries == 0 {
		recs = append(recs, "No warehouse data cached - may need manual refresh")
	}
	return recs
}

// Invalidate remove listagens e rotas do cache. Coordenadas de CEP ficam.
func (s *WarehouseService) Invalidate(ctx context.Context) (int, error) {
	n, err := s.cache.DeletePrefix(ctx, domain.WarehousePrefix, domain.DrivingPrefix)
	if err != nil {
		return n, fmt.Errorf("invalidate warehouse cache: %w", err)
	}
	s.logger.Info("warehouse cache invalidated", "entries", n)
	return n, nil
}
