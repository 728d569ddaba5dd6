package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/service"
)

// respondError maps service errors to HTTP responses. Quota denials become
// 403 with the full numeric detail; a missing tariff is 404 so clients can
// distinguish "no plan" from "plan exhausted".
func respondError(c *gin.Context, err error) {
	var quotaErr *service.QuotaForbiddenError
	if errors.As(err, &quotaErr) {
		c.JSON(http.StatusForbidden, dto.QuotaError{
			Error:     quotaErr.Error(),
			Kind:      string(quotaErr.Kind),
			Reason:    string(quotaErr.Reason),
			Used:      quotaErr.Used,
			Max:       quotaErr.Max,
			Required:  quotaErr.Required,
			Available: quotaErr.Available,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrTariffNotFound),
		errors.Is(err, service.ErrCompanyNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, dto.Error{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrEmployeeInactive):
		c.JSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.Error{Error: err.Error()})
	}
}
