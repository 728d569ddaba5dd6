package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/utils"
)

//go:generate mockery --name AuthService --output ../mocks
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, employeeID string) error
	ChangePassword(ctx context.Context, employeeID, oldPassword, newPassword string) error
}

type AuthHandler struct {
	*BaseHandler
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login godoc
// @Summary Authenticate an employee
// @Description Exchange email and password for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	resp, err := h.service.Login(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Revoke all sessions of the current employee
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} dto.Error
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	employeeID, err := utils.GetEmployeeIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.Logout(h.RequestCtx(c), employeeID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangePassword godoc
// @Summary Change the current employee's password
// @Description Rehashes the password and revokes all existing sessions
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ChangePasswordRequest true "Old and new password"
// @Success 204
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	employeeID, err := utils.GetEmployeeIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.ChangePassword(h.RequestCtx(c), employeeID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
