package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verimetr/verimetr-api/internal/api/dto"
)

//go:generate mockery --name CompanyService --output ../mocks
type CompanyService interface {
	Create(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error)
	List(ctx context.Context, limit, offset int) ([]dto.CompanyResponse, int64, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type CompanyHandler struct {
	*BaseHandler
	service CompanyService
}

func NewCompanyHandler(service CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// CreateCompany godoc
// @Summary Register a new company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateCompanyRequest true "Company object"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Router /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	company, err := h.service.Create(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, company)
}

// GetCompany godoc
// @Summary Get a company by ID
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 404 {object} dto.Error
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.service.GetByID(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// ListCompanies godoc
// @Summary List companies
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} dto.CompanyResponse
// @Failure 401 {object} dto.Error
// @Router /companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	companies, total, err := h.service.List(h.RequestCtx(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": companies, "total": total})
}

// SetCompanyActive godoc
// @Summary Suspend or resume a company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param body body dto.SetActiveRequest true "Active flag"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /companies/{id}/active [put]
func (h *CompanyHandler) SetCompanyActive(c *gin.Context) {
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.SetActive(h.RequestCtx(c), c.Param("id"), req.Active); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteCompany godoc
// @Summary Delete a company and its quota state
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	if err := h.service.Delete(h.RequestCtx(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
