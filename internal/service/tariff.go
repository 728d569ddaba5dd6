package service

import (
	"context"
	"fmt"
	"time"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/internal/service/tariffcache"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

// TariffService manages plan templates and their assignment to companies.
// Every path that touches a company's quota state ends with a cache
// invalidation.
type TariffService struct {
	repo   repository.Repository
	cache  LimitCache
	logger *logger.Logger
}

func NewTariffService(repo repository.Repository, cache LimitCache, logger *logger.Logger) *TariffService {
	return &TariffService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *TariffService) CreateBaseTariff(ctx context.Context, req dto.CreateBaseTariffRequest) (*dto.BaseTariffResponse, error) {
	tariff, err := s.repo.BaseTariff().Create(ctx, req.ToBaseTariff())
	if err != nil {
		return nil, err
	}
	return dto.FromBaseTariff(tariff), nil
}

func (s *TariffService) ListBaseTariffs(ctx context.Context, includeArchived bool) ([]dto.BaseTariffResponse, error) {
	tariffs, err := s.repo.BaseTariff().List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BaseTariffResponse, len(tariffs))
	for i := range tariffs {
		responses[i] = *dto.FromBaseTariff(&tariffs[i])
	}
	return responses, nil
}

func (s *TariffService) ArchiveBaseTariff(ctx context.Context, id string) error {
	return s.repo.BaseTariff().Archive(ctx, id)
}

// Assign materializes a base tariff into the company's quota state. The
// state row is locked for the duration so a concurrent admission check
// cannot interleave with the plan swap; used counters are seeded from the
// actual entity counts, and the new limits are validated against them.
func (s *TariffService) Assign(ctx context.Context, companyID string, req dto.AssignTariffRequest) (*dto.TariffStateResponse, error) {
	var assigned *domain.TariffState

	err := s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		base, err := txRepo.BaseTariff().GetByID(ctx, req.BaseTariffID)
		if err != nil {
			return fmt.Errorf("base tariff %s: %w", req.BaseTariffID, err)
		}

		// Lock the existing row (if any) before replacing it.
		if _, err := txRepo.TariffState().Get(ctx, companyID, true); err != nil {
			return err
		}

		validFrom := time.Now().UTC()
		if req.ValidFrom != nil {
			validFrom = *req.ValidFrom
		}
		validTo := validFrom.AddDate(0, 0, base.DurationDays)
		if req.ValidTo != nil {
			validTo = *req.ValidTo
		}

		used := map[domain.QuotaKind]int64{}
		for _, kind := range domain.QuotaKinds {
			count, err := txRepo.TariffState().CountActual(ctx, companyID, kind)
			if err != nil {
				return err
			}
			used[kind] = count
		}

		if err := validateAgainstActual(base, used); err != nil {
			return err
		}

		if err := txRepo.TariffHistory().DeactivatePrevious(ctx, companyID, "new tariff assigned"); err != nil {
			return err
		}
		if _, err := txRepo.TariffHistory().Append(ctx, &domain.TariffHistory{
			CompanyID:    companyID,
			BaseTariffID: &base.ID,
			Title:        base.Title,
			ValidFrom:    validFrom,
			ValidTo:      validTo,
		}); err != nil {
			return err
		}

		assigned, err = txRepo.TariffState().Upsert(ctx, &domain.TariffState{
			CompanyID:           companyID,
			Title:               base.Title,
			ValidFrom:           validFrom,
			ValidTo:             validTo,
			MaxEmployees:        base.MaxEmployees,
			MaxVerifications:    base.MaxVerifications,
			MaxOrders:           base.MaxOrders,
			UsedEmployees:       used[domain.QuotaEmployees],
			UsedVerifications:   used[domain.QuotaVerifications],
			UsedOrders:          used[domain.QuotaOrders],
			AutoManufactureYear: base.AutoManufactureYear,
			AutoTeams:           base.AutoTeams,
			AutoMetrolog:        base.AutoMetrolog,
			BaseTariffID:        &base.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, companyID); err != nil {
		return nil, err
	}

	s.logger.Infof("Assigned tariff %q to company %s", assigned.Title, companyID)
	return dto.FromTariffState(assigned), nil
}

// UpdateLimits edits selected limit fields without reloading the row.
func (s *TariffService) UpdateLimits(ctx context.Context, companyID string, req dto.UpdateTariffLimitsRequest) error {
	updated, err := s.repo.TariffState().UpdateLimits(ctx, companyID, req.ToLimitsUpdate())
	if err != nil {
		return err
	}
	if !updated {
		return ErrTariffNotFound
	}
	return s.cache.Invalidate(ctx, companyID)
}

// Unassign detaches the company from its plan entirely. A company without a
// quota state row is denied every metered operation.
func (s *TariffService) Unassign(ctx context.Context, companyID string) error {
	err := s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		if err := txRepo.TariffHistory().DeactivatePrevious(ctx, companyID, "tariff unassigned"); err != nil {
			return err
		}
		deleted, err := txRepo.TariffState().Delete(ctx, companyID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrTariffNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, companyID)
}

// LimitsInfo serves the quota view through the cache read-through path.
func (s *TariffService) LimitsInfo(ctx context.Context, companyID string) (*tariffcache.View, error) {
	return s.cache.GetOrFetch(ctx, companyID, func(ctx context.Context) (*domain.TariffState, error) {
		return s.repo.TariffState().Get(ctx, companyID, false)
	})
}

// ResetCounters zeroes the selected used counters (period rollover, invoked
// by an external scheduler or an admin, not by this process).
func (s *TariffService) ResetCounters(ctx context.Context, companyID string, req dto.ResetCountersRequest) error {
	var kinds []domain.QuotaKind
	if req.Verifications {
		kinds = append(kinds, domain.QuotaVerifications)
	}
	if req.Orders {
		kinds = append(kinds, domain.QuotaOrders)
	}
	if len(kinds) == 0 {
		return nil
	}

	reset, err := s.repo.TariffState().ResetCounters(ctx, companyID, kinds...)
	if err != nil {
		return err
	}
	if !reset {
		return ErrTariffNotFound
	}
	return s.cache.Invalidate(ctx, companyID)
}

func (s *TariffService) History(ctx context.Context, companyID string, limit, offset int) (*dto.TariffHistoryListResponse, error) {
	history, total, err := s.repo.TariffHistory().ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TariffHistoryResponse, len(history))
	for i := range history {
		items[i] = dto.FromTariffHistory(&history[i])
	}
	return &dto.TariffHistoryListResponse{Items: items, Total: total}, nil
}

// validateAgainstActual rejects an assignment whose limits are already
// exceeded by the company's real entity counts, so a freshly assigned plan
// can never start out over quota.
func validateAgainstActual(base *domain.BaseTariff, used map[domain.QuotaKind]int64) error {
	check := func(kind domain.QuotaKind, max *int64) error {
		if max == nil {
			return nil
		}
		if used[kind] > *max {
			return &QuotaForbiddenError{
				Kind:      kind,
				Reason:    DenyExceeded,
				Used:      used[kind],
				Max:       *max,
				Required:  0,
				Available: *max - used[kind],
			}
		}
		return nil
	}

	if err := check(domain.QuotaEmployees, base.MaxEmployees); err != nil {
		return err
	}
	if err := check(domain.QuotaVerifications, base.MaxVerifications); err != nil {
		return err
	}
	return check(domain.QuotaOrders, base.MaxOrders)
}
