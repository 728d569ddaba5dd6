package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/internal/service/tariffcache"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

type MockTariffStateRepository struct {
	mock.Mock
}

func (m *MockTariffStateRepository) Get(ctx context.Context, companyID string, lock bool) (*domain.TariffState, error) {
	args := m.Called(ctx, companyID, lock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffState), args.Error(1)
}

func (m *MockTariffStateRepository) Upsert(ctx context.Context, state *domain.TariffState) (*domain.TariffState, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffState), args.Error(1)
}

func (m *MockTariffStateRepository) UpdateLimits(ctx context.Context, companyID string, update domain.TariffLimitsUpdate) (bool, error) {
	args := m.Called(ctx, companyID, update)
	return args.Bool(0), args.Error(1)
}

func (m *MockTariffStateRepository) IncrementUsage(ctx context.Context, companyID string, delta domain.UsageDelta) (bool, error) {
	args := m.Called(ctx, companyID, delta)
	return args.Bool(0), args.Error(1)
}

func (m *MockTariffStateRepository) DecrementUsageSafe(ctx context.Context, companyID string, delta domain.UsageDelta) (bool, error) {
	args := m.Called(ctx, companyID, delta)
	return args.Bool(0), args.Error(1)
}

func (m *MockTariffStateRepository) SetUsage(ctx context.Context, companyID string, kind domain.QuotaKind, value int64) (bool, error) {
	args := m.Called(ctx, companyID, kind, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockTariffStateRepository) ResetCounters(ctx context.Context, companyID string, kinds ...domain.QuotaKind) (bool, error) {
	args := m.Called(ctx, companyID, kinds)
	return args.Bool(0), args.Error(1)
}

func (m *MockTariffStateRepository) CountActual(ctx context.Context, companyID string, kind domain.QuotaKind) (int64, error) {
	args := m.Called(ctx, companyID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTariffStateRepository) Delete(ctx context.Context, companyID string) (bool, error) {
	args := m.Called(ctx, companyID)
	return args.Bool(0), args.Error(1)
}

type MockLimitCache struct {
	mock.Mock
}

func (m *MockLimitCache) GetView(ctx context.Context, companyID string) (*tariffcache.View, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariffcache.View), args.Error(1)
}

func (m *MockLimitCache) SetView(ctx context.Context, companyID string, state *domain.TariffState) (*tariffcache.View, error) {
	args := m.Called(ctx, companyID, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariffcache.View), args.Error(1)
}

func (m *MockLimitCache) Invalidate(ctx context.Context, companyID string) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

func (m *MockLimitCache) GetOrFetch(ctx context.Context, companyID string, fetch func(ctx context.Context) (*domain.TariffState, error)) (*tariffcache.View, error) {
	args := m.Called(ctx, companyID, fetch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariffcache.View), args.Error(1)
}

// stubRepository satisfies repository.Repository with whatever sub-repos a
// test wires in; Transaction runs the callback against the same instance,
// which is exactly what the gorm implementation does with a bound
// transaction.
type stubRepository struct {
	company       repository.CompanyRepository
	employee      repository.EmployeeRepository
	order         repository.OrderRepository
	verification  repository.VerificationRepository
	baseTariff    repository.BaseTariffRepository
	tariffState   repository.TariffStateRepository
	tariffHistory repository.TariffHistoryRepository
}

func (r *stubRepository) Company() repository.CompanyRepository             { return r.company }
func (r *stubRepository) Employee() repository.EmployeeRepository           { return r.employee }
func (r *stubRepository) Order() repository.OrderRepository                 { return r.order }
func (r *stubRepository) Verification() repository.VerificationRepository   { return r.verification }
func (r *stubRepository) BaseTariff() repository.BaseTariffRepository       { return r.baseTariff }
func (r *stubRepository) TariffState() repository.TariffStateRepository     { return r.tariffState }
func (r *stubRepository) TariffHistory() repository.TariffHistoryRepository { return r.tariffHistory }

func (r *stubRepository) Transaction(ctx context.Context, fn func(txRepo repository.Repository) error) error {
	return fn(r)
}

func limit(v int64) *int64 { return &v }

func cachedView(kind domain.QuotaKind, max *int64, used int64) *tariffcache.View {
	return &tariffcache.View{
		HasTariff: true,
		CachedAt:  time.Now(),
		Limits: map[domain.QuotaKind]tariffcache.KindUsage{
			kind: {Max: max, Used: used},
		},
	}
}

type QuotaServiceTestSuite struct {
	suite.Suite
	mockState *MockTariffStateRepository
	mockCache *MockLimitCache
	repo      *stubRepository
	service   *QuotaService
}

func (s *QuotaServiceTestSuite) SetupTest() {
	s.mockState = new(MockTariffStateRepository)
	s.mockCache = new(MockLimitCache)
	s.repo = &stubRepository{tariffState: s.mockState}
	s.service = NewQuotaService(s.repo, s.mockCache, logger.NewLogger("test"))
}

func TestQuotaService(t *testing.T) {
	suite.Run(t, new(QuotaServiceTestSuite))
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_ZeroLimitDeniesEvenWhenUnused() {
	ctx := context.Background()
	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:    "c1",
		MaxEmployees: limit(0),
	}, nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaEmployees, 1)

	quotaErr, ok := IsQuotaForbidden(err)
	s.True(ok)
	s.Equal(DenyZeroLimit, quotaErr.Reason)
	s.mockState.AssertExpectations(s.T())
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_BoundaryAdmitsExactCapacity() {
	ctx := context.Background()
	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(10),
		UsedEmployees: 9,
	}, nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaEmployees, 1)

	s.NoError(err)
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_DeniesWhenOverCapacity() {
	ctx := context.Background()
	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(10),
		UsedEmployees: 10,
	}, nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaEmployees, 1)

	quotaErr, ok := IsQuotaForbidden(err)
	s.True(ok)
	s.Equal(DenyExceeded, quotaErr.Reason)
	s.Equal(int64(10), quotaErr.Used)
	s.Equal(int64(10), quotaErr.Max)
	s.Equal(int64(0), quotaErr.Available)
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_NilLimitMeansUnlimited() {
	ctx := context.Background()
	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		UsedEmployees: 1_000_000,
	}, nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaEmployees, 100)

	s.NoError(err)
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_NoTariffAssigned() {
	ctx := context.Background()
	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(nil, nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaEmployees, 1)

	s.ErrorIs(err, ErrTariffNotFound)
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_CacheFastPathDeniesWithoutDatabaseRead() {
	ctx := context.Background()
	s.mockCache.On("GetView", ctx, "c1").Return(cachedView(domain.QuotaOrders, limit(5), 5), nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaOrders, 1)

	quotaErr, ok := IsQuotaForbidden(err)
	s.True(ok)
	s.Equal(DenyExceeded, quotaErr.Reason)
	// The locked read must not have run.
	s.mockState.AssertNotCalled(s.T(), "Get", ctx, "c1", true)
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_StaleCacheAdmitCannotOverrideAuthoritativeDeny() {
	ctx := context.Background()
	// Cache still believes there is room; the database says otherwise.
	s.mockCache.On("GetView", ctx, "c1").Return(cachedView(domain.QuotaOrders, limit(5), 2), nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:  "c1",
		MaxOrders:  limit(5),
		UsedOrders: 5,
	}, nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaOrders, 1)

	_, ok := IsQuotaForbidden(err)
	s.True(ok)
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_CacheErrorDegradesToAuthoritativeRead() {
	ctx := context.Background()
	s.mockCache.On("GetView", ctx, "c1").Return(nil, errors.New("redis down"))
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(10),
		UsedEmployees: 3,
	}, nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaEmployees, 1)

	s.NoError(err)
	s.mockState.AssertExpectations(s.T())
}

func (s *QuotaServiceTestSuite) TestCheckAvailable_RequiredBelowOneCountsAsOne() {
	ctx := context.Background()
	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(3),
		UsedEmployees: 3,
	}, nil)

	err := s.service.CheckAvailable(ctx, s.repo, "c1", domain.QuotaEmployees, 0)

	_, ok := IsQuotaForbidden(err)
	s.True(ok)
}

func (s *QuotaServiceTestSuite) TestApplyIncrement_BumpsCounterAndInvalidates() {
	ctx := context.Background()
	s.mockState.On("IncrementUsage", ctx, "c1", domain.DeltaFor(domain.QuotaEmployees, 1)).Return(true, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	err := s.service.ApplyIncrement(ctx, s.repo, "c1", domain.QuotaEmployees, 1)

	s.NoError(err)
	s.mockState.AssertExpectations(s.T())
	s.mockCache.AssertExpectations(s.T())
}

func (s *QuotaServiceTestSuite) TestApplyDecrement_ClampedAtStorageAndInvalidates() {
	ctx := context.Background()
	s.mockState.On("DecrementUsageSafe", ctx, "c1", domain.DeltaFor(domain.QuotaOrders, 2)).Return(true, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	err := s.service.ApplyDecrement(ctx, s.repo, "c1", domain.QuotaOrders, 2)

	s.NoError(err)
	s.mockCache.AssertExpectations(s.T())
}

func (s *QuotaServiceTestSuite) TestApplyIncrement_RepositoryErrorSkipsInvalidation() {
	ctx := context.Background()
	s.mockState.On("IncrementUsage", ctx, "c1", domain.DeltaFor(domain.QuotaEmployees, 1)).Return(false, errors.New("db down"))

	err := s.service.ApplyIncrement(ctx, s.repo, "c1", domain.QuotaEmployees, 1)

	s.Error(err)
	s.mockCache.AssertNotCalled(s.T(), "Invalidate", ctx, "c1")
}

func (s *QuotaServiceTestSuite) TestRecalculate_OverwritesFromGroundTruth() {
	ctx := context.Background()
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(50),
		UsedEmployees: 12,
	}, nil)
	s.mockState.On("CountActual", ctx, "c1", domain.QuotaEmployees).Return(int64(7), nil)
	s.mockState.On("SetUsage", ctx, "c1", domain.QuotaEmployees, int64(7)).Return(true, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	actual, err := s.service.Recalculate(ctx, "c1", domain.QuotaEmployees)

	s.NoError(err)
	s.Equal(int64(7), actual)
	s.mockState.AssertExpectations(s.T())
	s.mockCache.AssertExpectations(s.T())
}

func (s *QuotaServiceTestSuite) TestRecalculate_IsIdempotent() {
	ctx := context.Background()
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{CompanyID: "c1"}, nil)
	s.mockState.On("CountActual", ctx, "c1", domain.QuotaOrders).Return(int64(4), nil)
	s.mockState.On("SetUsage", ctx, "c1", domain.QuotaOrders, int64(4)).Return(true, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	first, err := s.service.Recalculate(ctx, "c1", domain.QuotaOrders)
	s.NoError(err)
	second, err := s.service.Recalculate(ctx, "c1", domain.QuotaOrders)
	s.NoError(err)

	s.Equal(first, second)
}

func (s *QuotaServiceTestSuite) TestRecalculate_NoTariffLeavesNothingToCorrect() {
	ctx := context.Background()
	s.mockState.On("Get", ctx, "c1", true).Return(nil, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	actual, err := s.service.Recalculate(ctx, "c1", domain.QuotaEmployees)

	s.NoError(err)
	s.Equal(int64(0), actual)
	s.mockState.AssertNotCalled(s.T(), "SetUsage", ctx, "c1", domain.QuotaEmployees, int64(0))
}
