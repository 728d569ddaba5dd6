package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/service"
	"github.com/verimetr/verimetr-api/internal/service/tariffcache"
	"github.com/verimetr/verimetr-api/internal/utils"
)

type MockTariffService struct {
	mock.Mock
}

func (m *MockTariffService) CreateBaseTariff(ctx context.Context, req dto.CreateBaseTariffRequest) (*dto.BaseTariffResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BaseTariffResponse), args.Error(1)
}

func (m *MockTariffService) ListBaseTariffs(ctx context.Context, includeArchived bool) ([]dto.BaseTariffResponse, error) {
	args := m.Called(ctx, includeArchived)
	return args.Get(0).([]dto.BaseTariffResponse), args.Error(1)
}

func (m *MockTariffService) ArchiveBaseTariff(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTariffService) Assign(ctx context.Context, companyID string, req dto.AssignTariffRequest) (*dto.TariffStateResponse, error) {
	args := m.Called(ctx, companyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TariffStateResponse), args.Error(1)
}

func (m *MockTariffService) UpdateLimits(ctx context.Context, companyID string, req dto.UpdateTariffLimitsRequest) error {
	args := m.Called(ctx, companyID, req)
	return args.Error(0)
}

func (m *MockTariffService) Unassign(ctx context.Context, companyID string) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

func (m *MockTariffService) LimitsInfo(ctx context.Context, companyID string) (*tariffcache.View, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariffcache.View), args.Error(1)
}

func (m *MockTariffService) ResetCounters(ctx context.Context, companyID string, req dto.ResetCountersRequest) error {
	args := m.Called(ctx, companyID, req)
	return args.Error(0)
}

func (m *MockTariffService) History(ctx context.Context, companyID string, limit, offset int) (*dto.TariffHistoryListResponse, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TariffHistoryListResponse), args.Error(1)
}

type MockQuotaRecalculator struct {
	mock.Mock
}

func (m *MockQuotaRecalculator) Recalculate(ctx context.Context, companyID string, kind domain.QuotaKind) (int64, error) {
	args := m.Called(ctx, companyID, kind)
	return args.Get(0).(int64), args.Error(1)
}

type TariffHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockTariffService
	mockQuota   *MockQuotaRecalculator
	handler     *TariffHandler
}

func (s *TariffHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockService = new(MockTariffService)
	s.mockQuota = new(MockQuotaRecalculator)
	s.handler = NewTariffHandler(s.mockService, s.mockQuota)

	// Simulates the auth middleware populating JWT claims.
	s.router.Use(func(c *gin.Context) {
		c.Set(string(utils.ClaimsKey), claimsFor("company1"))
		c.Next()
	})

	s.router.PUT("/companies/:id/tariff", s.handler.AssignTariff)
	s.router.POST("/companies/:id/tariff/recalculate/:kind", s.handler.RecalculateCounter)
	s.router.GET("/tariff/limits", s.handler.GetLimitsInfo)
}

func TestTariffHandler(t *testing.T) {
	suite.Run(t, new(TariffHandlerTestSuite))
}

func (s *TariffHandlerTestSuite) TestAssignTariff_Success() {
	// Arrange
	expected := &dto.TariffStateResponse{CompanyID: "company1", Title: "Pro"}
	s.mockService.On("Assign", mock.Anything, "company1", mock.AnythingOfType("dto.AssignTariffRequest")).
		Return(expected, nil)

	body, _ := json.Marshal(dto.AssignTariffRequest{BaseTariffID: "550e8400-e29b-41d4-a716-446655440000"})

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/companies/company1/tariff", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusOK, w.Code)

	var resp dto.TariffStateResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("Pro", resp.Title)
	s.mockService.AssertExpectations(s.T())
}

func (s *TariffHandlerTestSuite) TestAssignTariff_QuotaDenialMapsTo403() {
	// Arrange
	s.mockService.On("Assign", mock.Anything, "company1", mock.AnythingOfType("dto.AssignTariffRequest")).
		Return(nil, &service.QuotaForbiddenError{
			Kind:      domain.QuotaEmployees,
			Reason:    service.DenyExceeded,
			Used:      7,
			Max:       5,
			Required:  0,
			Available: -2,
		})

	body, _ := json.Marshal(dto.AssignTariffRequest{BaseTariffID: "550e8400-e29b-41d4-a716-446655440000"})

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/companies/company1/tariff", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusForbidden, w.Code)

	var resp dto.QuotaError
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("employees", resp.Kind)
	s.Equal("exceeded", resp.Reason)
	s.Equal(int64(7), resp.Used)
}

func (s *TariffHandlerTestSuite) TestAssignTariff_MissingBaseTariffIDIsBadRequest() {
	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/companies/company1/tariff", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusBadRequest, w.Code)
	s.mockService.AssertNotCalled(s.T(), "Assign", mock.Anything, "company1", mock.Anything)
}

func (s *TariffHandlerTestSuite) TestRecalculateCounter_Success() {
	// Arrange
	s.mockQuota.On("Recalculate", mock.Anything, "company1", domain.QuotaOrders).Return(int64(11), nil)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/companies/company1/tariff/recalculate/orders", nil)
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusOK, w.Code)

	var resp dto.RecalculateResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("orders", resp.Kind)
	s.Equal(int64(11), resp.ActualCount)
}

func (s *TariffHandlerTestSuite) TestRecalculateCounter_UnknownKindIsBadRequest() {
	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/companies/company1/tariff/recalculate/widgets", nil)
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusBadRequest, w.Code)
	s.mockQuota.AssertNotCalled(s.T(), "Recalculate", mock.Anything, "company1", mock.Anything)
}

func (s *TariffHandlerTestSuite) TestGetLimitsInfo_ServesCompanyView() {
	// Arrange
	max := int64(10)
	s.mockService.On("LimitsInfo", mock.Anything, "company1").Return(&tariffcache.View{
		HasTariff: true,
		Title:     "Pro",
		Limits: map[domain.QuotaKind]tariffcache.KindUsage{
			domain.QuotaEmployees: {Max: &max, Used: 4},
		},
	}, nil)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/tariff/limits", nil)
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusOK, w.Code)

	var resp tariffcache.View
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.HasTariff)
	s.Equal("Pro", resp.Title)
	s.Equal(int64(4), resp.Limits[domain.QuotaEmployees].Used)
}

func claimsFor(companyID string) jwt.MapClaims {
	return jwt.MapClaims{
		string(utils.CompanyIDKey): companyID,
	}
}
