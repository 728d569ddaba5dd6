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

//go:generate mockery --name OrderService --output ../mocks
type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetByID(ctx context.Context, id string) (*dto.OrderResponse, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]dto.OrderResponse, error)
	Cancel(ctx context.Context, id, companyID string) error
}

type OrderHandler struct {
	*BaseHandler
	service OrderService
}

func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// CreateOrder godoc
// @Summary Create an order
// @Description Creation is denied with 403 when the company's order quota is exhausted
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateOrderRequest true "Order object"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.QuotaError
// @Failure 404 {object} dto.Error
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	order, err := h.service.Create(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder godoc
// @Summary Get an order by ID
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.Error
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetByID(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders godoc
// @Summary List orders of the caller's company
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Filter by active flag"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} dto.OrderResponse
// @Failure 401 {object} dto.Error
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	filter := domain.OrderFilter{CompanyID: companyID}
	if raw, ok := c.GetQuery("active"); ok {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Error{Error: "active must be a boolean"})
			return
		}
		filter.Active = &active
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.service.List(h.RequestCtx(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// CancelOrder godoc
// @Summary Cancel an order
// @Description The order stays in the registry with active=false; its quota slot is released once
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	companyID, err := utils.GetCompanyIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.Cancel(h.RequestCtx(c), c.Param("id"), companyID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
