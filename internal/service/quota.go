package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/metrics"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/internal/service/tariffcache"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

// LimitCache is the quota guard's view of the tariff cache.
//
//go:generate mockery --name LimitCache --output ../mocks
type LimitCache interface {
	GetView(ctx context.Context, companyID string) (*tariffcache.View, error)
	SetView(ctx context.Context, companyID string, state *domain.TariffState) (*tariffcache.View, error)
	Invalidate(ctx context.Context, companyID string) error
	GetOrFetch(ctx context.Context, companyID string, fetch func(ctx context.Context) (*domain.TariffState, error)) (*tariffcache.View, error)
}

// QuotaService decides admissions against a company's tariff plan and keeps
// the usage counters in step with the domain tables. Checks and usage
// updates take the transaction-bound repository of the enclosing domain
// write, so the row lock acquired here serializes concurrent admissions for
// the same company until that transaction finishes.
type QuotaService struct {
	repo   repository.Repository
	cache  LimitCache
	logger *logger.Logger
}

func NewQuotaService(repo repository.Repository, cache LimitCache, logger *logger.Logger) *QuotaService {
	return &QuotaService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// CheckAvailable admits or denies reserving required units of kind for the
// company. Two tiers: a cache fast path that can only reject early, then the
// authoritative locked read that always runs, closing the stale-cache admit
// gap. txRepo must be bound to the transaction performing the domain write.
func (s *QuotaService) CheckAvailable(ctx context.Context, txRepo repository.Repository, companyID string, kind domain.QuotaKind, required int64) error {
	if required < 1 {
		required = 1
	}

	// Fast path: a stale view can prove denial, never admission.
	view, err := s.cache.GetView(ctx, companyID)
	if err != nil {
		// Cache connectivity trouble degrades to the locked read.
		s.logger.Warnf("Quota cache read failed for company %s: %v", companyID, err)
	} else if usage, ok := view.Usage(kind); ok && usage.Max != nil {
		if err := evaluateLimit(kind, usage.Used, *usage.Max, required); err != nil {
			metrics.QuotaDenied(kind, deniedReason(err), true)
			return err
		}
	}

	// Authoritative path: row stays locked until the caller's transaction
	// commits, so the next admission for this company sees this one's effect.
	state, err := txRepo.TariffState().Get(ctx, companyID, true)
	if err != nil {
		return err
	}
	if state == nil {
		return ErrTariffNotFound
	}

	max := state.Max(kind)
	if max == nil {
		return nil
	}
	if err := evaluateLimit(kind, state.Used(kind), *max, required); err != nil {
		metrics.QuotaDenied(kind, deniedReason(err), false)
		return err
	}
	return nil
}

// ApplyIncrement records an already-admitted reservation: atomic counter
// bump in the caller's transaction, then cache invalidation. If the
// transaction later rolls back, the dropped cache entry merely forces one
// extra authoritative read.
func (s *QuotaService) ApplyIncrement(ctx context.Context, txRepo repository.Repository, companyID string, kind domain.QuotaKind, delta int64) error {
	if delta < 1 {
		delta = 1
	}
	if _, err := txRepo.TariffState().IncrementUsage(ctx, companyID, domain.DeltaFor(kind, delta)); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, companyID)
}

// ApplyDecrement records a domain-entity removal. The clamp at the storage
// layer keeps the counter non-negative even when decrements outrun
// increments.
func (s *QuotaService) ApplyDecrement(ctx context.Context, txRepo repository.Repository, companyID string, kind domain.QuotaKind, delta int64) error {
	if delta < 1 {
		delta = 1
	}
	if _, err := txRepo.TariffState().DecrementUsageSafe(ctx, companyID, domain.DeltaFor(kind, delta)); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, companyID)
}

// Recalculate overwrites one used counter with a fresh ground-truth count,
// correcting drift from bulk membership edits. Idempotent: with no
// intervening domain changes a second call finds the same count and leaves
// the row as it is. Returns the actual count, or 0 when no tariff is
// assigned (nothing to correct).
func (s *QuotaService) Recalculate(ctx context.Context, companyID string, kind domain.QuotaKind) (int64, error) {
	var actual int64
	err := s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		state, err := txRepo.TariffState().Get(ctx, companyID, true)
		if err != nil {
			return err
		}
		if state == nil {
			return nil
		}

		actual, err = txRepo.TariffState().CountActual(ctx, companyID, kind)
		if err != nil {
			return err
		}

		_, err = txRepo.TariffState().SetUsage(ctx, companyID, kind, actual)
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := s.cache.Invalidate(ctx, companyID); err != nil {
		return 0, err
	}

	s.logger.Info("Recalculated quota usage",
		zap.String("company_id", companyID),
		zap.String("kind", string(kind)),
		zap.Int64("actual", actual),
	)
	return actual, nil
}

// InvalidateCache drops the cached view for a company. Exposed for callers
// that mutate the state outside the mutator paths (plan changes, deletion).
func (s *QuotaService) InvalidateCache(ctx context.Context, companyID string) error {
	return s.cache.Invalidate(ctx, companyID)
}

// evaluateLimit applies the two ceiling rules. max==0 denies regardless of
// used; otherwise used+required must not exceed max (the boundary admits).
func evaluateLimit(kind domain.QuotaKind, used, max, required int64) error {
	if max == 0 {
		return &QuotaForbiddenError{Kind: kind, Reason: DenyZeroLimit}
	}
	if used+required > max {
		return &QuotaForbiddenError{
			Kind:      kind,
			Reason:    DenyExceeded,
			Used:      used,
			Max:       max,
			Required:  required,
			Available: max - used,
		}
	}
	return nil
}

func deniedReason(err error) string {
	if quotaErr, ok := IsQuotaForbidden(err); ok {
		return string(quotaErr.Reason)
	}
	return "unknown"
}
