package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/domain"
)

type EmployeeRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewEmployeeRepository(writerDB, readerDB *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}
	if err := r.writerDB.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	var employee domain.Employee
	if err := r.readerDB.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	var employee domain.Employee
	if err := r.readerDB.WithContext(ctx).First(&employee, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	return r.writerDB.WithContext(ctx).Save(employee).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.writerDB.WithContext(ctx).Delete(&domain.Employee{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *EmployeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	db := r.readerDB.WithContext(ctx)

	if filter.CompanyID != "" {
		db = db.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Email != "" {
		db = db.Where("email = ?", filter.Email)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}

	var employees []domain.Employee
	if err := db.Order("full_name").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// ReplaceCompanySet rewrites the company's employee roster wholesale. Rows
// not in keepIDs are soft-deleted, new rows are batch-inserted. The caller
// reconciles the used_employees counter afterwards.
func (r *EmployeeRepository) ReplaceCompanySet(ctx context.Context, companyID string, keepIDs []string, add []domain.Employee) error {
	db := r.writerDB.WithContext(ctx)

	removal := db.Where("company_id = ?", companyID)
	if len(keepIDs) > 0 {
		removal = removal.Where("id NOT IN ?", keepIDs)
	}
	if err := removal.Delete(&domain.Employee{}).Error; err != nil {
		return err
	}

	if len(add) == 0 {
		return nil
	}
	for i := range add {
		add[i].CompanyID = companyID
		if add[i].ID == "" {
			add[i].ID = uuid.New().String()
		}
	}
	return db.Create(&add).Error
}
