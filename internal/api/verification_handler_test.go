package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/utils"
)

type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Create(ctx context.Context, req dto.CreateVerificationRequest) (*dto.VerificationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VerificationResponse), args.Error(1)
}

func (m *MockVerificationService) GetByID(ctx context.Context, id string) (*dto.VerificationResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VerificationResponse), args.Error(1)
}

func (m *MockVerificationService) List(ctx context.Context, filter domain.VerificationFilter) ([]dto.VerificationResponse, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]dto.VerificationResponse), args.Error(1)
}

func (m *MockVerificationService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVerificationService) DownloadProtocol(ctx context.Context, id string) ([]byte, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockVerificationService) ListDocuments(ctx context.Context, companyID string) ([]string, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockVerificationService) RequestReport(ctx context.Context, companyID string, filter domain.VerificationFilter) error {
	args := m.Called(ctx, companyID, filter)
	return args.Error(0)
}

type VerificationHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockVerificationService
	handler     *VerificationHandler
}

func (s *VerificationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockService = new(MockVerificationService)
	s.handler = NewVerificationHandler(s.mockService)

	s.router.Use(func(c *gin.Context) {
		c.Set(string(utils.ClaimsKey), claimsFor("company1"))
		c.Next()
	})

	s.router.GET("/verifications/documents", s.handler.ListDocuments)
	s.router.POST("/verifications/report", s.handler.RequestReport)
}

func TestVerificationHandler(t *testing.T) {
	suite.Run(t, new(VerificationHandlerTestSuite))
}

func (s *VerificationHandlerTestSuite) TestListDocuments_ServesCompanyKeys() {
	// Arrange
	s.mockService.On("ListDocuments", mock.Anything, "company1").Return([]string{
		"protocols/company1/v1.txt",
		"reports/company1/registry_2026-01-01_2026-01-31.csv",
	}, nil)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/verifications/documents", nil)
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusOK, w.Code)

	var resp dto.DocumentListResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Keys, 2)
	s.Equal("protocols/company1/v1.txt", resp.Keys[0])
	s.mockService.AssertExpectations(s.T())
}

func (s *VerificationHandlerTestSuite) TestRequestReport_ParsesDateOnlyPeriod() {
	// Arrange
	s.mockService.On("RequestReport", mock.Anything, "company1", mock.MatchedBy(func(f domain.VerificationFilter) bool {
		return f.CompanyID == "company1" &&
			f.DateFrom.Format("2006-01-02") == "2026-01-01" &&
			// A date-only upper bound covers the whole closing day.
			f.DateTo.Format("2006-01-02 15:04:05") == "2026-01-31 23:59:59"
	})).Return(nil)

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/verifications/report?date_from=2026-01-01&date_to=2026-01-31", nil)
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusAccepted, w.Code)
	s.mockService.AssertExpectations(s.T())
}

func (s *VerificationHandlerTestSuite) TestRequestReport_InvalidDateIsBadRequest() {
	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/verifications/report?date_from=January", nil)
	s.router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusBadRequest, w.Code)
	s.mockService.AssertNotCalled(s.T(), "RequestReport", mock.Anything, "company1", mock.Anything)
}
