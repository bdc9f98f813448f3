package application

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"warehousenow/warehouse/domain"

	"github.com/charmbracelet/log"
)

// MasterKey é a chave do cache da listagem completa.
const MasterKey = domain.WarehousePrefix + "master_api"

const (
	defaultCheckEvery = 5 * time.Minute
	// TTL depois de uma verificação agendada na fonte, e fora dela.
	checkedTTL = 30 * time.Minute
	regularTTL = time.Hour
)

// WarehouseService lista armazéns com cache.
//
// A fonte só é consultada quando a verificação periódica vence (CheckEvery),
// quando o cache está vazio ou quando o chamador força. Se a fonte falhar e
// houver cópia em cache, a cópia é servida.
type WarehouseService struct {
	source     domain.WarehouseSource
	cache      domain.Cache
	logger     *log.Logger
	checkEvery time.Duration
	now        func() time.Time

	mu        sync.Mutex
	lastCheck time.Time
}

type WarehouseOption func(*WarehouseService)

func WithCheckEvery(d time.Duration) WarehouseOption {
	return func(s *WarehouseService) { s.checkEvery = d }
}

func WithLogger(l *log.Logger) WarehouseOption {
	return func(s *WarehouseService) { s.logger = l }
}

func WithClock(now func() time.Time) WarehouseOption {
	return func(s *WarehouseService) { s.now = now }
}

func NewWarehouseService(source domain.WarehouseSource, cache domain.Cache, opts ...WarehouseOption) *WarehouseService {
	s := &WarehouseService{
		source:     source,
		cache:      cache,
		logger:     log.New(io.Discard),
		checkEvery: defaultCheckEvery,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List devolve todos os armazéns. force ignora o cache.
func (s *WarehouseService) List(ctx context.Context, force bool) ([]domain.Record, error) {
	due := s.checkDue() || force

	var cached []domain.Record
	hit, err := s.cache.Get(ctx, MasterKey, &cached)
	if err != nil {
		s.logger.Warn("warehouse cache read failed", "err", err)
		hit = false
	}
	if hit && len(cached) > 0 && !due {
		return cached, nil
	}

	records, err := s.source.ListWarehouses(ctx)
	if err != nil {
		if hit && len(cached) > 0 {
			s.logger.Warn("warehouse source failed, serving cached copy", "err", err, "records", len(cached))
			return cached, nil
		}
		return nil, fmt.Errorf("list warehouses: %w", err)
	}

	ttl := regularTTL
	if due {
		ttl = checkedTTL
	}
	if err := s.cache.Set(ctx, MasterKey, records, ttl); err != nil {
		s.logger.Warn("warehouse cache write failed", "err", err)
	}
	s.logger.Debug("warehouses fetched from source", "records", len(records), "ttl", ttl)
	return records, nil
}

// checkDue informa se a verificação periódica venceu e, se sim, registra a
// verificação agora.
func (s *WarehouseService) checkDue() bool {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastCheck.IsZero() || now.Sub(s.lastCheck) > s.checkEvery {
		s.lastCheck = now
		return true
	}
	return false
}

func (s *WarehouseService) LastCheck() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCheck
}
