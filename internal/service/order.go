package service

import (
	"context"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

// OrderService meters order creation against the company quota. Cancelled
// orders stay in the table with active=false and release their slot.
type OrderService struct {
	repo   repository.Repository
	quota  *QuotaService
	logger *logger.Logger
}

func NewOrderService(repo repository.Repository, quota *QuotaService, logger *logger.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		quota:  quota,
		logger: logger,
	}
}

func (s *OrderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	order := req.ToOrder()

	err := s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		if err := s.quota.CheckAvailable(ctx, txRepo, req.CompanyID, domain.QuotaOrders, 1); err != nil {
			return err
		}

		created, err := txRepo.Order().Create(ctx, order)
		if err != nil {
			return err
		}
		order = created

		return s.quota.ApplyIncrement(ctx, txRepo, req.CompanyID, domain.QuotaOrders, 1)
	})
	if err != nil {
		return nil, err
	}

	return dto.FromOrder(order), nil
}

func (s *OrderService) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := s.repo.Order().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromOrder(order), nil
}

func (s *OrderService) List(ctx context.Context, filter domain.OrderFilter) ([]dto.OrderResponse, error) {
	orders, err := s.repo.Order().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *dto.FromOrder(&orders[i])
	}
	return responses, nil
}

// Cancel deactivates an order and releases its quota slot. Deactivation
// only touches rows still active, so cancelling twice decrements once.
func (s *OrderService) Cancel(ctx context.Context, id, companyID string) error {
	return s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		deactivated, err := txRepo.Order().Deactivate(ctx, id)
		if err != nil {
			return err
		}
		if !deactivated {
			// Already cancelled; nothing to release.
			return nil
		}
		return s.quota.ApplyDecrement(ctx, txRepo, companyID, domain.QuotaOrders, 1)
	})
}
