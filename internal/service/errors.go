package service

import (
	"errors"
	"fmt"

	"github.com/verimetr/verimetr-api/internal/domain"
)

var (
	// Tariff errors
	ErrTariffNotFound = errors.New("company has no active tariff plan")

	// Company errors
	ErrCompanyNotFound = errors.New("company not found")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmployeeInactive   = errors.New("employee account is inactive")
)

// QuotaDenyReason distinguishes "the plan forbids this kind entirely" from
// "the plan allows it but there is no room left".
type QuotaDenyReason string

const (
	DenyZeroLimit QuotaDenyReason = "zero_limit"
	DenyExceeded  QuotaDenyReason = "exceeded"
)

// QuotaForbiddenError is a terminal admission denial. It is raised before
// any domain mutation, surfaces as a client error, and is never retried.
type QuotaForbiddenError struct {
	Kind   domain.QuotaKind
	Reason QuotaDenyReason

	// Numbers are meaningful only for DenyExceeded.
	Used      int64
	Max       int64
	Required  int64
	Available int64
}

func (e *QuotaForbiddenError) Error() string {
	if e.Reason == DenyZeroLimit {
		return fmt.Sprintf("tariff plan forbids %s entirely (limit: 0)", e.Kind)
	}
	return fmt.Sprintf(
		"tariff limit for %s reached (%d/%d): required %d, available %d",
		e.Kind, e.Used, e.Max, e.Required, e.Available,
	)
}

// IsQuotaForbidden extracts a QuotaForbiddenError from an error chain.
func IsQuotaForbidden(err error) (*QuotaForbiddenError, bool) {
	var quotaErr *QuotaForbiddenError
	if errors.As(err, &quotaErr) {
		return quotaErr, true
	}
	return nil, false
}
