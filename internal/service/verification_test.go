package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) Create(ctx context.Context, entry *domain.VerificationEntry) (*domain.VerificationEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationEntry), args.Error(1)
}

func (m *MockVerificationRepository) GetByID(ctx context.Context, id string) (*domain.VerificationEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationEntry), args.Error(1)
}

func (m *MockVerificationRepository) Update(ctx context.Context, entry *domain.VerificationEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockVerificationRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationRepository) List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.VerificationEntry), args.Error(1)
}

type VerificationServiceTestSuite struct {
	suite.Suite
	mockVerification *MockVerificationRepository
	mockState        *MockTariffStateRepository
	mockCache        *MockLimitCache
	repo             *stubRepository
	service          *VerificationService
}

func (s *VerificationServiceTestSuite) SetupTest() {
	s.mockVerification = new(MockVerificationRepository)
	s.mockState = new(MockTariffStateRepository)
	s.mockCache = new(MockLimitCache)
	s.repo = &stubRepository{
		verification: s.mockVerification,
		tariffState:  s.mockState,
	}
	log := logger.NewLogger("test")
	s.service = NewVerificationService(s.repo, NewQuotaService(s.repo, s.mockCache, log), nil, nil, log)
}

func TestVerificationService(t *testing.T) {
	suite.Run(t, new(VerificationServiceTestSuite))
}

func (s *VerificationServiceTestSuite) TestDelete_ReleasesSlotWhenARowWasRemoved() {
	ctx := context.Background()

	s.mockVerification.On("GetByID", ctx, "v1").Return(&domain.VerificationEntry{
		ID:        "v1",
		CompanyID: "c1",
	}, nil)
	s.mockVerification.On("Delete", ctx, "v1").Return(true, nil)
	s.mockState.On("DecrementUsageSafe", ctx, "c1", domain.DeltaFor(domain.QuotaVerifications, 1)).Return(true, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	err := s.service.Delete(ctx, "v1")

	s.NoError(err)
	s.mockVerification.AssertExpectations(s.T())
	s.mockState.AssertExpectations(s.T())
	s.mockCache.AssertExpectations(s.T())
}

func (s *VerificationServiceTestSuite) TestDelete_RepeatedDeleteDoesNotTouchCounters() {
	ctx := context.Background()

	// The entry is still readable but a concurrent delete wins the race:
	// no row is removed, so no quota slot may be released a second time.
	s.mockVerification.On("GetByID", ctx, "v1").Return(&domain.VerificationEntry{
		ID:        "v1",
		CompanyID: "c1",
	}, nil)
	s.mockVerification.On("Delete", ctx, "v1").Return(false, nil)

	err := s.service.Delete(ctx, "v1")

	s.ErrorIs(err, gorm.ErrRecordNotFound)
	s.mockState.AssertNotCalled(s.T(), "DecrementUsageSafe", ctx, "c1", mock.Anything)
	s.mockCache.AssertNotCalled(s.T(), "Invalidate", ctx, "c1")
}

func (s *VerificationServiceTestSuite) TestDelete_RepositoryErrorSkipsDecrement() {
	ctx := context.Background()

	s.mockVerification.On("GetByID", ctx, "v1").Return(&domain.VerificationEntry{
		ID:        "v1",
		CompanyID: "c1",
	}, nil)
	s.mockVerification.On("Delete", ctx, "v1").Return(false, errors.New("connection reset"))

	err := s.service.Delete(ctx, "v1")

	s.Error(err)
	s.mockState.AssertNotCalled(s.T(), "DecrementUsageSafe", ctx, "c1", mock.Anything)
}
