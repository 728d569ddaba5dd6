package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/domain"
)

type VerificationRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewVerificationRepository(writerDB, readerDB *gorm.DB) *VerificationRepository {
	return &VerificationRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *VerificationRepository) Create(ctx context.Context, entry *domain.VerificationEntry) (*domain.VerificationEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.writerDB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *VerificationRepository) GetByID(ctx context.Context, id string) (*domain.VerificationEntry, error) {
	var entry domain.VerificationEntry
	if err := r.readerDB.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *VerificationRepository) Update(ctx context.Context, entry *domain.VerificationEntry) error {
	return r.writerDB.WithContext(ctx).Save(entry).Error
}

func (r *VerificationRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.writerDB.WithContext(ctx).Delete(&domain.VerificationEntry{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *VerificationRepository) List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationEntry, error) {
	db := r.readerDB.WithContext(ctx)

	if filter.CompanyID != "" {
		db = db.Where("company_id = ?", filter.CompanyID)
	}
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if !filter.DateFrom.IsZero() {
		db = db.Where("verification_date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		db = db.Where("verification_date <= ?", filter.DateTo)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}

	var entries []domain.VerificationEntry
	if err := db.Order("verification_date DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
