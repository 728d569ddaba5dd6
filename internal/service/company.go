package service

import (
	"context"
	"errors"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/pkg/logger"
	"gorm.io/gorm"
)

type CompanyService struct {
	repo   repository.Repository
	cache  LimitCache
	logger *logger.Logger
}

func NewCompanyService(repo repository.Repository, cache LimitCache, logger *logger.Logger) *CompanyService {
	return &CompanyService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *CompanyService) Create(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := s.repo.Company().Create(ctx, req.ToCompany())
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Created company %s (%s)", company.ID, company.Name)
	return dto.FromCompany(company), nil
}

func (s *CompanyService) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := s.repo.Company().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return dto.FromCompany(company), nil
}

func (s *CompanyService) List(ctx context.Context, limit, offset int) ([]dto.CompanyResponse, int64, error) {
	companies, total, err := s.repo.Company().List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = *dto.FromCompany(&companies[i])
	}
	return responses, total, nil
}

func (s *CompanyService) SetActive(ctx context.Context, id string, active bool) error {
	updated, err := s.repo.Company().SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !updated {
		return ErrCompanyNotFound
	}
	return nil
}

// Delete removes the company together with its quota state; the cached
// quota view is dropped so a recreated company with the same ID cannot
// inherit stale limits.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	err := s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		if _, err := txRepo.TariffState().Delete(ctx, id); err != nil {
			return err
		}
		deleted, err := txRepo.Company().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrCompanyNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, id)
}
