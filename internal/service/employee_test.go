package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	args := m.Called(ctx, employee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmployeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) ReplaceCompanySet(ctx context.Context, companyID string, keepIDs []string, add []domain.Employee) error {
	args := m.Called(ctx, companyID, keepIDs, add)
	return args.Error(0)
}

type EmployeeServiceTestSuite struct {
	suite.Suite
	mockEmployee *MockEmployeeRepository
	mockState    *MockTariffStateRepository
	mockCache    *MockLimitCache
	repo         *stubRepository
	service      *EmployeeService
}

func (s *EmployeeServiceTestSuite) SetupTest() {
	s.mockEmployee = new(MockEmployeeRepository)
	s.mockState = new(MockTariffStateRepository)
	s.mockCache = new(MockLimitCache)
	s.repo = &stubRepository{
		employee:    s.mockEmployee,
		tariffState: s.mockState,
	}
	log := logger.NewLogger("test")
	s.service = NewEmployeeService(s.repo, NewQuotaService(s.repo, s.mockCache, log), log)
}

func TestEmployeeService(t *testing.T) {
	suite.Run(t, new(EmployeeServiceTestSuite))
}

func (s *EmployeeServiceTestSuite) TestCreate_AdmitsAndIncrementsWithinQuota() {
	ctx := context.Background()
	req := dto.CreateEmployeeRequest{
		CompanyID: "c1",
		Email:     "new@acme.ru",
		FullName:  "New Employee",
		Password:  "secret-password",
	}

	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(10),
		UsedEmployees: 4,
	}, nil)
	s.mockEmployee.On("Create", ctx, mock.MatchedBy(func(e *domain.Employee) bool {
		return e.CompanyID == "c1" && e.Email == "new@acme.ru" && e.PasswordHash != "" && e.PasswordHash != "secret-password"
	})).Return(&domain.Employee{ID: "e1", CompanyID: "c1", Email: "new@acme.ru"}, nil)
	s.mockState.On("IncrementUsage", ctx, "c1", domain.DeltaFor(domain.QuotaEmployees, 1)).Return(true, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	resp, err := s.service.Create(ctx, req)

	s.NoError(err)
	s.Equal("e1", resp.ID)
	s.mockEmployee.AssertExpectations(s.T())
	s.mockState.AssertExpectations(s.T())
	s.mockCache.AssertExpectations(s.T())
}

func (s *EmployeeServiceTestSuite) TestCreate_DeniedBeforeAnyInsert() {
	ctx := context.Background()
	req := dto.CreateEmployeeRequest{
		CompanyID: "c1",
		Email:     "new@acme.ru",
		FullName:  "New Employee",
		Password:  "secret-password",
	}

	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(5),
		UsedEmployees: 5,
	}, nil)

	_, err := s.service.Create(ctx, req)

	_, ok := IsQuotaForbidden(err)
	s.True(ok)
	s.mockEmployee.AssertNotCalled(s.T(), "Create", ctx, mock.Anything)
	s.mockState.AssertNotCalled(s.T(), "IncrementUsage", ctx, "c1", mock.Anything)
}

func (s *EmployeeServiceTestSuite) TestDelete_DecrementsOnlyWhenARowWasRemoved() {
	ctx := context.Background()

	s.mockEmployee.On("Delete", ctx, "e1").Return(true, nil)
	s.mockState.On("DecrementUsageSafe", ctx, "c1", domain.DeltaFor(domain.QuotaEmployees, 1)).Return(true, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	err := s.service.Delete(ctx, "e1", "c1")

	s.NoError(err)
	s.mockState.AssertExpectations(s.T())
}

func (s *EmployeeServiceTestSuite) TestDelete_MissingEmployeeDoesNotTouchCounters() {
	ctx := context.Background()

	s.mockEmployee.On("Delete", ctx, "missing").Return(false, nil)

	err := s.service.Delete(ctx, "missing", "c1")

	s.ErrorIs(err, gorm.ErrRecordNotFound)
	s.mockState.AssertNotCalled(s.T(), "DecrementUsageSafe", ctx, "c1", mock.Anything)
}

func (s *EmployeeServiceTestSuite) TestReplaceCompanySet_ChecksBatchThenRecounts() {
	ctx := context.Background()
	req := dto.ReplaceEmployeesRequest{
		KeepIDs: []string{"e1"},
		Add: []dto.CreateEmployeeRequest{
			{CompanyID: "c1", Email: "a@acme.ru", FullName: "A", Password: "password-a"},
			{CompanyID: "c1", Email: "b@acme.ru", FullName: "B", Password: "password-b"},
		},
	}

	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(10),
		UsedEmployees: 3,
	}, nil)
	s.mockEmployee.On("ReplaceCompanySet", ctx, "c1", []string{"e1"}, mock.AnythingOfType("[]domain.Employee")).Return(nil)
	s.mockState.On("CountActual", ctx, "c1", domain.QuotaEmployees).Return(int64(3), nil)
	s.mockState.On("SetUsage", ctx, "c1", domain.QuotaEmployees, int64(3)).Return(true, nil)
	s.mockCache.On("Invalidate", ctx, "c1").Return(nil)

	err := s.service.ReplaceCompanySet(ctx, "c1", req)

	s.NoError(err)
	s.mockEmployee.AssertExpectations(s.T())
	s.mockState.AssertExpectations(s.T())
}

func (s *EmployeeServiceTestSuite) TestReplaceCompanySet_BatchLargerThanRemainingIsDenied() {
	ctx := context.Background()
	req := dto.ReplaceEmployeesRequest{
		Add: []dto.CreateEmployeeRequest{
			{CompanyID: "c1", Email: "a@acme.ru", FullName: "A", Password: "password-a"},
			{CompanyID: "c1", Email: "b@acme.ru", FullName: "B", Password: "password-b"},
		},
	}

	s.mockCache.On("GetView", ctx, "c1").Return(nil, nil)
	s.mockState.On("Get", ctx, "c1", true).Return(&domain.TariffState{
		CompanyID:     "c1",
		MaxEmployees:  limit(10),
		UsedEmployees: 9,
	}, nil)

	err := s.service.ReplaceCompanySet(ctx, "c1", req)

	quotaErr, ok := IsQuotaForbidden(err)
	s.True(ok)
	s.Equal(int64(2), quotaErr.Required)
	s.Equal(int64(1), quotaErr.Available)
	s.mockEmployee.AssertNotCalled(s.T(), "ReplaceCompanySet", ctx, "c1", mock.Anything, mock.Anything)
}
