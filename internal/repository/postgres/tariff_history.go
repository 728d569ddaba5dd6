package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/domain"
)

type TariffHistoryRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewTariffHistoryRepository(writerDB, readerDB *gorm.DB) *TariffHistoryRepository {
	return &TariffHistoryRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *TariffHistoryRepository) Append(ctx context.Context, history *domain.TariffHistory) (*domain.TariffHistory, error) {
	if history.ID == "" {
		history.ID = uuid.New().String()
	}
	history.IsActive = true
	if err := r.writerDB.WithContext(ctx).Create(history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (r *TariffHistoryRepository) GetActiveByCompany(ctx context.Context, companyID string) (*domain.TariffHistory, error) {
	var history domain.TariffHistory
	err := r.readerDB.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("created_at DESC").
		First(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &history, nil
}

// DeactivatePrevious closes out every active history row for the company,
// recording when and why. Called before appending a new assignment.
func (r *TariffHistoryRepository) DeactivatePrevious(ctx context.Context, companyID, reason string) error {
	now := time.Now().UTC()
	return r.writerDB.WithContext(ctx).
		Model(&domain.TariffHistory{}).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Updates(map[string]any{
			"is_active":           false,
			"deactivated_at":      now,
			"deactivation_reason": reason,
		}).Error
}

func (r *TariffHistoryRepository) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.TariffHistory, int64, error) {
	db := r.readerDB.WithContext(ctx).
		Model(&domain.TariffHistory{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var history []domain.TariffHistory
	if err := db.Order("created_at DESC").Find(&history).Error; err != nil {
		return nil, 0, err
	}
	return history, total, nil
}
