package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

// EmployeeService guards every employee admission with the company's quota:
// the availability check, the row insert and the counter increment run in
// one transaction so the state row lock covers all three.
type EmployeeService struct {
	repo   repository.Repository
	quota  *QuotaService
	logger *logger.Logger
}

func NewEmployeeService(repo repository.Repository, quota *QuotaService, logger *logger.Logger) *EmployeeService {
	return &EmployeeService{
		repo:   repo,
		quota:  quota,
		logger: logger,
	}
}

func (s *EmployeeService) Create(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if !domain.IsValidStatus(req.Status) && req.Status != "" {
		return nil, errors.New("invalid employee status: " + req.Status)
	}

	employee := req.ToEmployee()
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		employee.PasswordHash = string(hash)
	}

	err := s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		if err := s.quota.CheckAvailable(ctx, txRepo, req.CompanyID, domain.QuotaEmployees, 1); err != nil {
			return err
		}

		created, err := txRepo.Employee().Create(ctx, employee)
		if err != nil {
			return err
		}
		employee = created

		return s.quota.ApplyIncrement(ctx, txRepo, req.CompanyID, domain.QuotaEmployees, 1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Created employee %s in company %s", employee.ID, employee.CompanyID)
	return dto.FromEmployee(employee), nil
}

func (s *EmployeeService) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	employee, err := s.repo.Employee().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return dto.FromEmployee(employee), nil
}

func (s *EmployeeService) List(ctx context.Context, filter domain.EmployeeFilter) ([]dto.EmployeeResponse, error) {
	employees, err := s.repo.Employee().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EmployeeResponse, len(employees))
	for i := range employees {
		responses[i] = *dto.FromEmployee(&employees[i])
	}
	return responses, nil
}

// Delete removes an employee and releases their quota slot. The decrement
// only happens when a row was actually removed, so repeated deletes of the
// same ID cannot drive the counter down twice.
func (s *EmployeeService) Delete(ctx context.Context, id, companyID string) error {
	return s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		deleted, err := txRepo.Employee().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return gorm.ErrRecordNotFound
		}
		return s.quota.ApplyDecrement(ctx, txRepo, companyID, domain.QuotaEmployees, 1)
	})
}

// ReplaceCompanySet swaps a company's employee roster in bulk: keep the
// listed IDs, drop the rest, add the new ones. New entries are admitted
// against the quota as one batch. The used counter is rebuilt from a
// recount afterwards instead of arithmetic on deltas, since the number of
// removed rows is not known up front.
func (s *EmployeeService) ReplaceCompanySet(ctx context.Context, companyID string, req dto.ReplaceEmployeesRequest) error {
	add := make([]domain.Employee, len(req.Add))
	for i := range req.Add {
		add[i] = *req.Add[i].ToEmployee()
		add[i].CompanyID = companyID
		if req.Add[i].Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Add[i].Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			add[i].PasswordHash = string(hash)
		}
	}

	err := s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		if len(add) > 0 {
			if err := s.quota.CheckAvailable(ctx, txRepo, companyID, domain.QuotaEmployees, int64(len(add))); err != nil {
				return err
			}
		}
		return txRepo.Employee().ReplaceCompanySet(ctx, companyID, req.KeepIDs, add)
	})
	if err != nil {
		return err
	}

	if _, err := s.quota.Recalculate(ctx, companyID, domain.QuotaEmployees); err != nil {
		return err
	}

	s.logger.Infof("Replaced employee set for company %s: kept %d, added %d", companyID, len(req.KeepIDs), len(add))
	return nil
}
