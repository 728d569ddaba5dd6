package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/service/tariffcache"
	"github.com/verimetr/verimetr-api/internal/utils"
)

//go:generate mockery --name TariffService --output ../mocks
type TariffService interface {
	CreateBaseTariff(ctx context.Context, req dto.CreateBaseTariffRequest) (*dto.BaseTariffResponse, error)
	ListBaseTariffs(ctx context.Context, includeArchived bool) ([]dto.BaseTariffResponse, error)
	ArchiveBaseTariff(ctx context.Context, id string) error
	Assign(ctx context.Context, companyID string, req dto.AssignTariffRequest) (*dto.TariffStateResponse, error)
	UpdateLimits(ctx context.Context, companyID string, req dto.UpdateTariffLimitsRequest) error
	Unassign(ctx context.Context, companyID string) error
	LimitsInfo(ctx context.Context, companyID string) (*tariffcache.View, error)
	ResetCounters(ctx context.Context, companyID string, req dto.ResetCountersRequest) error
	History(ctx context.Context, companyID string, limit, offset int) (*dto.TariffHistoryListResponse, error)
}

//go:generate mockery --name QuotaRecalculator --output ../mocks
type QuotaRecalculator interface {
	Recalculate(ctx context.Context, companyID string, kind domain.QuotaKind) (int64, error)
}

type TariffHandler struct {
	*BaseHandler
	service TariffService
	quota   QuotaRecalculator
}

func NewTariffHandler(service TariffService, quota QuotaRecalculator) *TariffHandler {
	return &TariffHandler{service: service, quota: quota}
}

// CreateBaseTariff godoc
// @Summary Create a base tariff template
// @Tags tariffs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateBaseTariffRequest true "Tariff template"
// @Success 201 {object} dto.BaseTariffResponse
// @Failure 400 {object} dto.Error
// @Router /tariffs [post]
func (h *TariffHandler) CreateBaseTariff(c *gin.Context) {
	var req dto.CreateBaseTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	tariff, err := h.service.CreateBaseTariff(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tariff)
}

// ListBaseTariffs godoc
// @Summary List base tariff templates
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Param include_archived query bool false "Include archived templates"
// @Success 200 {array} dto.BaseTariffResponse
// @Router /tariffs [get]
func (h *TariffHandler) ListBaseTariffs(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.DefaultQuery("include_archived", "false"))

	tariffs, err := h.service.ListBaseTariffs(h.RequestCtx(c), includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tariffs)
}

// ArchiveBaseTariff godoc
// @Summary Archive a base tariff template
// @Description Archived templates stay referenced by existing assignments but cannot be assigned anew
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Base tariff ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /tariffs/{id} [delete]
func (h *TariffHandler) ArchiveBaseTariff(c *gin.Context) {
	if err := h.service.ArchiveBaseTariff(h.RequestCtx(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignTariff godoc
// @Summary Assign a tariff to a company
// @Description Seeds used counters from the actual entity counts and rejects plans whose limits are already exceeded
// @Tags tariffs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param body body dto.AssignTariffRequest true "Assignment"
// @Success 200 {object} dto.TariffStateResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.QuotaError
// @Failure 404 {object} dto.Error
// @Router /companies/{id}/tariff [put]
func (h *TariffHandler) AssignTariff(c *gin.Context) {
	var req dto.AssignTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	state, err := h.service.Assign(h.RequestCtx(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// UpdateTariffLimits godoc
// @Summary Edit selected limits of a company's tariff
// @Description Only the limits flagged as set are touched; null with the flag set means unlimited
// @Tags tariffs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param body body dto.UpdateTariffLimitsRequest true "Limit changes"
// @Success 204
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /companies/{id}/tariff/limits [patch]
func (h *TariffHandler) UpdateTariffLimits(c *gin.Context) {
	var req dto.UpdateTariffLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.UpdateLimits(h.RequestCtx(c), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UnassignTariff godoc
// @Summary Detach a company from its tariff
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /companies/{id}/tariff [delete]
func (h *TariffHandler) UnassignTariff(c *gin.Context) {
	if err := h.service.Unassign(h.RequestCtx(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetLimitsInfo godoc
// @Summary Get the caller company's quota view
// @Description Served from the Redis cache when fresh, otherwise rebuilt from the database
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.TariffLimitsResponse
// @Failure 401 {object} dto.Error
// @Router /tariff/limits [get]
func (h *TariffHandler) GetLimitsInfo(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	view, err := h.service.LimitsInfo(h.RequestCtx(c), companyID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TariffLimitsResponse{View: view})
}

// ResetCounters godoc
// @Summary Zero selected used counters of a company's tariff
// @Tags tariffs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param body body dto.ResetCountersRequest true "Counters to reset"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /companies/{id}/tariff/reset [post]
func (h *TariffHandler) ResetCounters(c *gin.Context) {
	var req dto.ResetCountersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.ResetCounters(h.RequestCtx(c), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RecalculateCounter godoc
// @Summary Rebuild a used counter from the actual entity count
// @Description Locked recount of ground truth; safe to run repeatedly
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param kind path string true "Quota kind" Enums(employees, verifications, orders)
// @Success 200 {object} dto.RecalculateResponse
// @Failure 400 {object} dto.Error
// @Router /companies/{id}/tariff/recalculate/{kind} [post]
func (h *TariffHandler) RecalculateCounter(c *gin.Context) {
	kind := domain.QuotaKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, dto.Error{Error: "unknown quota kind"})
		return
	}

	actual, err := h.quota.Recalculate(h.RequestCtx(c), c.Param("id"), kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RecalculateResponse{Kind: string(kind), ActualCount: actual})
}

// GetTariffHistory godoc
// @Summary List a company's tariff assignment history
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.TariffHistoryListResponse
// @Failure 404 {object} dto.Error
// @Router /companies/{id}/tariff/history [get]
func (h *TariffHandler) GetTariffHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	history, err := h.service.History(h.RequestCtx(c), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
