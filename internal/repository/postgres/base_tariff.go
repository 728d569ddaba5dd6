package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/domain"
)

type BaseTariffRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewBaseTariffRepository(writerDB, readerDB *gorm.DB) *BaseTariffRepository {
	return &BaseTariffRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *BaseTariffRepository) Create(ctx context.Context, tariff *domain.BaseTariff) (*domain.BaseTariff, error) {
	if tariff.ID == "" {
		tariff.ID = uuid.New().String()
	}
	if err := r.writerDB.WithContext(ctx).Create(tariff).Error; err != nil {
		return nil, err
	}
	return tariff, nil
}

func (r *BaseTariffRepository) GetByID(ctx context.Context, id string) (*domain.BaseTariff, error) {
	var tariff domain.BaseTariff
	if err := r.readerDB.WithContext(ctx).First(&tariff, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tariff, nil
}

func (r *BaseTariffRepository) Update(ctx context.Context, tariff *domain.BaseTariff) error {
	return r.writerDB.WithContext(ctx).Save(tariff).Error
}

// Archive hides a plan template from new assignments without breaking
// companies that still reference it.
func (r *BaseTariffRepository) Archive(ctx context.Context, id string) error {
	return r.writerDB.WithContext(ctx).
		Model(&domain.BaseTariff{}).
		Where("id = ?", id).
		Update("archived", true).Error
}

func (r *BaseTariffRepository) List(ctx context.Context, includeArchived bool) ([]domain.BaseTariff, error) {
	db := r.readerDB.WithContext(ctx)
	if !includeArchived {
		db = db.Where("archived = ?", false)
	}

	var tariffs []domain.BaseTariff
	if err := db.Order("title").Find(&tariffs).Error; err != nil {
		return nil, err
	}
	return tariffs, nil
}
