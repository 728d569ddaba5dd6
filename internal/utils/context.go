package utils

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type ContextKey string

const (
	ClaimsKey     ContextKey = "claims"
	CompanyIDKey  ContextKey = "company_id"
	EmployeeIDKey ContextKey = "employee_id"
	StatusKey     ContextKey = "status"
)

var (
	ErrNoClaimsInContext    = errors.New("no claims found in context")
	ErrInvalidClaimsType    = errors.New("invalid claims type")
	ErrNoCompanyIDInClaims  = errors.New("no company_id found in claims")
	ErrInvalidCompanyIDType = errors.New("company_id must be a string")
)

func GetCompanyIDFromContext(c context.Context) (string, error) {
	claims, exists := c.Value(ClaimsKey).(jwt.MapClaims)
	if !exists {
		return "", ErrNoClaimsInContext
	}

	companyID, exists := claims[string(CompanyIDKey)]
	if !exists {
		return "", ErrNoCompanyIDInClaims
	}

	companyIDStr, ok := companyID.(string)
	if !ok {
		return "", ErrInvalidCompanyIDType
	}

	return companyIDStr, nil
}

func GetEmployeeIDFromContext(c context.Context) (string, error) {
	claims, exists := c.Value(ClaimsKey).(jwt.MapClaims)
	if !exists {
		return "", ErrNoClaimsInContext
	}

	employeeID, ok := claims[string(EmployeeIDKey)].(string)
	if !ok {
		return "", ErrInvalidClaimsType
	}

	return employeeID, nil
}
