package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/domain"
)

type CompanyRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewCompanyRepository(writerDB, readerDB *gorm.DB) *CompanyRepository {
	return &CompanyRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) (*domain.Company, error) {
	if err := r.writerDB.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	var company domain.Company
	if err := r.readerDB.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	return r.writerDB.WithContext(ctx).Save(company).Error
}

func (r *CompanyRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	result := r.writerDB.WithContext(ctx).
		Model(&domain.Company{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *CompanyRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.writerDB.WithContext(ctx).Delete(&domain.Company{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]domain.Company, int64, error) {
	var total int64
	if err := r.readerDB.WithContext(ctx).Model(&domain.Company{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []domain.Company
	query := r.readerDB.WithContext(ctx).Order("name")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&companies).Error; err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}
