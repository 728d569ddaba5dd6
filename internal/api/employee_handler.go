package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/utils"
)

//go:generate mockery --name EmployeeService --output ../mocks
type EmployeeService interface {
	Create(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, filter domain.EmployeeFilter) ([]dto.EmployeeResponse, error)
	Delete(ctx context.Context, id, companyID string) error
	ReplaceCompanySet(ctx context.Context, companyID string, req dto.ReplaceEmployeesRequest) error
}

type EmployeeHandler struct {
	*BaseHandler
	service EmployeeService
}

func NewEmployeeHandler(service EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// CreateEmployee godoc
// @Summary Create an employee
// @Description Creation is denied with 403 when the company's employee quota is exhausted
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateEmployeeRequest true "Employee object"
// @Success 201 {object} dto.EmployeeResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.QuotaError
// @Failure 404 {object} dto.Error
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	employee, err := h.service.Create(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// GetEmployee godoc
// @Summary Get an employee by ID
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} dto.EmployeeResponse
// @Failure 404 {object} dto.Error
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employee, err := h.service.GetByID(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, employee)
}

// ListEmployees godoc
// @Summary List employees of the caller's company
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} dto.EmployeeResponse
// @Failure 401 {object} dto.Error
// @Router /employees [get]
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	employees, err := h.service.List(h.RequestCtx(c), domain.EmployeeFilter{
		CompanyID: companyID,
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, employees)
}

// DeleteEmployee godoc
// @Summary Delete an employee and release their quota slot
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.Delete(h.RequestCtx(c), c.Param("id"), companyID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReplaceEmployees godoc
// @Summary Replace the company's employee roster in bulk
// @Description Drops employees not listed in keep_ids, creates the add entries as one batch, then rebuilds the used counter from a recount
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ReplaceEmployeesRequest true "Roster replacement"
// @Success 204
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.QuotaError
// @Router /employees/replace [post]
func (h *EmployeeHandler) ReplaceEmployees(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	var req dto.ReplaceEmployeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.ReplaceCompanySet(h.RequestCtx(c), companyID, req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
