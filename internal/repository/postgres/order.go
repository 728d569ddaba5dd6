package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/domain"
)

type OrderRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewOrderRepository(writerDB, readerDB *gorm.DB) *OrderRepository {
	return &OrderRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Active = true
	if err := r.writerDB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := r.readerDB.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.writerDB.WithContext(ctx).Save(order).Error
}

// Deactivate cancels an order. Returns false when the order was already
// inactive or does not exist, so callers don't decrement usage twice.
func (r *OrderRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	result := r.writerDB.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	db := r.readerDB.WithContext(ctx)

	if filter.CompanyID != "" {
		db = db.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}
	if !filter.DateFrom.IsZero() {
		db = db.Where("scheduled_at >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		db = db.Where("scheduled_at <= ?", filter.DateTo)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}

	var orders []domain.Order
	if err := db.Order("scheduled_at").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
