package api

import (
	"context"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/utils"
	timeutils "github.com/verimetr/verimetr-api/pkg/utils"
)

//go:generate mockery --name VerificationService --output ../mocks
type VerificationService interface {
	Create(ctx context.Context, req dto.CreateVerificationRequest) (*dto.VerificationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.VerificationResponse, error)
	List(ctx context.Context, filter domain.VerificationFilter) ([]dto.VerificationResponse, error)
	Delete(ctx context.Context, id string) error
	DownloadProtocol(ctx context.Context, id string) ([]byte, string, error)
	ListDocuments(ctx context.Context, companyID string) ([]string, error)
	RequestReport(ctx context.Context, companyID string, filter domain.VerificationFilter) error
}

type VerificationHandler struct {
	*BaseHandler
	service VerificationService
}

func NewVerificationHandler(service VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// CreateVerification godoc
// @Summary Record a verification result
// @Description Creation is denied with 403 when the company's verification quota is exhausted; protocol generation is enqueued asynchronously
// @Tags verifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateVerificationRequest true "Verification entry"
// @Success 201 {object} dto.VerificationResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.QuotaError
// @Failure 404 {object} dto.Error
// @Router /verifications [post]
func (h *VerificationHandler) CreateVerification(c *gin.Context) {
	var req dto.CreateVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	entry, err := h.service.Create(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetVerification godoc
// @Summary Get a verification entry by ID
// @Tags verifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Verification ID"
// @Success 200 {object} dto.VerificationResponse
// @Failure 404 {object} dto.Error
// @Router /verifications/{id} [get]
func (h *VerificationHandler) GetVerification(c *gin.Context) {
	entry, err := h.service.GetByID(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListVerifications godoc
// @Summary List verification entries of the caller's company
// @Tags verifications
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "Period start (RFC 3339 or YYYY-MM-DD)"
// @Param date_to query string false "Period end (RFC 3339 or YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} dto.VerificationResponse
// @Failure 401 {object} dto.Error
// @Router /verifications [get]
func (h *VerificationHandler) ListVerifications(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	filter, err := verificationFilter(c, companyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	entries, err := h.service.List(h.RequestCtx(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// DeleteVerification godoc
// @Summary Delete a verification entry and release its quota slot
// @Tags verifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Verification ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /verifications/{id} [delete]
func (h *VerificationHandler) DeleteVerification(c *gin.Context) {
	if err := h.service.Delete(h.RequestCtx(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadProtocol godoc
// @Summary Download the generated protocol document
// @Tags verifications
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Verification ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.Error
// @Router /verifications/{id}/protocol [get]
func (h *VerificationHandler) DownloadProtocol(c *gin.Context) {
	data, key, err := h.service.DownloadProtocol(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+path.Base(key))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// ListDocuments godoc
// @Summary List the caller company's stored documents
// @Description Object keys of generated protocols and registry reports
// @Tags verifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DocumentListResponse
// @Failure 401 {object} dto.Error
// @Router /verifications/documents [get]
func (h *VerificationHandler) ListDocuments(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	keys, err := h.service.ListDocuments(h.RequestCtx(c), companyID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DocumentListResponse{Keys: keys})
}

// RequestReport godoc
// @Summary Enqueue a registry report export for a period
// @Tags verifications
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "Period start (RFC 3339 or YYYY-MM-DD)"
// @Param date_to query string false "Period end (RFC 3339 or YYYY-MM-DD)"
// @Success 202
// @Failure 401 {object} dto.Error
// @Router /verifications/report [post]
func (h *VerificationHandler) RequestReport(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	filter, err := verificationFilter(c, companyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.RequestReport(h.RequestCtx(c), companyID, filter); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

func verificationFilter(c *gin.Context, companyID string) (domain.VerificationFilter, error) {
	filter := domain.VerificationFilter{CompanyID: companyID}

	if raw := c.Query("date_from"); raw != "" {
		t, err := timeutils.ParseUserTime(raw, false)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := timeutils.ParseUserTime(raw, true)
		if err != nil {
			return filter, err
		}
		filter.DateTo = t
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	return filter, nil
}
