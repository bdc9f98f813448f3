package application

import (
	"context"
	"fmt"

	"warehousenow/warehouse/domain"
)

type OrderService struct {
	Source domain.OrderSource
}

// ByRequestID devolve os pedidos de um Request ID (lista vazia se não houver).
func (s OrderService) ByRequestID(ctx context.Context, requestID int) ([]domain.Order, error) {
	if requestID <= 0 {
		return nil, fmt.Errorf("request id %d: %w", requestID, domain.ErrInvalidInput)
	}
	if s.Source == nil {
		return nil, fmt.Errorf("orders: %w", domain.ErrNotConfigured)
	}
	orders, err := s.Source.OrdersByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("orders for request %d: %w", requestID, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
