package dto

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"verifier@acme.ru"`
	Password string `json:"password" binding:"required" example:"secret"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required" example:"Metrology Lab LLC"`
	City string `json:"city" example:"Kazan"`
	INN  string `json:"inn" example:"1655000000"`
}

type CreateEmployeeRequest struct {
	CompanyID   string `json:"company_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email       string `json:"email" binding:"required,email" example:"verifier@acme.ru"`
	FullName    string `json:"full_name" binding:"required" example:"Ivanov Ivan Ivanovich"`
	Status      string `json:"status" example:"verifier"`
	Password    string `json:"password" binding:"required,min=8"`
	SnilsNumber string `json:"snils_number" example:"123-456-789 00"`
}

// ReplaceEmployeesRequest rewrites a company's roster wholesale: employees
// not listed in keep_ids are removed and the add entries are created.
type ReplaceEmployeesRequest struct {
	KeepIDs []string                `json:"keep_ids"`
	Add     []CreateEmployeeRequest `json:"add"`
}

type CreateOrderRequest struct {
	CompanyID   string     `json:"company_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	EmployeeID  *string    `json:"employee_id,omitempty"`
	Address     string     `json:"address" binding:"required" example:"Kazan, Bauman st. 1"`
	ClientName  string     `json:"client_name" example:"Petrov P.P."`
	ClientPhone string     `json:"client_phone" example:"+7 900 000-00-00"`
	Comment     string     `json:"comment"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" example:"2025-07-17T10:00:00Z"`
}

type CreateVerificationRequest struct {
	CompanyID        string    `json:"company_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	EmployeeID       string    `json:"employee_id" binding:"required"`
	OrderID          *string   `json:"order_id,omitempty"`
	EquipmentType    string    `json:"equipment_type" binding:"required" example:"water meter"`
	SerialNumber     string    `json:"serial_number" example:"SN-001234"`
	RegistryNumber   string    `json:"registry_number" example:"12345-10"`
	ActSeries        string    `json:"act_series" example:"AB"`
	ActNumber        string    `json:"act_number" example:"000123"`
	Suitable         *bool     `json:"suitable,omitempty"`
	VerificationDate time.Time `json:"verification_date" binding:"required" example:"2025-07-17T00:00:00Z"`
}

type CreateBaseTariffRequest struct {
	Title               string `json:"title" binding:"required" example:"Start"`
	Description         string `json:"description"`
	DurationDays        int    `json:"duration_days" example:"30"`
	MaxEmployees        *int64 `json:"max_employees"`
	MaxVerifications    *int64 `json:"max_verifications"`
	MaxOrders           *int64 `json:"max_orders"`
	AutoManufactureYear bool   `json:"auto_manufacture_year"`
	AutoTeams           bool   `json:"auto_teams"`
	AutoMetrolog        bool   `json:"auto_metrolog"`
}

type AssignTariffRequest struct {
	BaseTariffID string     `json:"base_tariff_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidTo      *time.Time `json:"valid_to,omitempty"`
}

// UpdateTariffLimitsRequest edits selected plan limits in place. A field set
// to null in a *present* limit means unlimited; use the *_set flags to say
// which limits the request actually touches.
type UpdateTariffLimitsRequest struct {
	MaxEmployeesSet     bool       `json:"max_employees_set"`
	MaxEmployees        *int64     `json:"max_employees"`
	MaxVerificationsSet bool       `json:"max_verifications_set"`
	MaxVerifications    *int64     `json:"max_verifications"`
	MaxOrdersSet        bool       `json:"max_orders_set"`
	MaxOrders           *int64     `json:"max_orders"`
	ValidFrom           *time.Time `json:"valid_from,omitempty"`
	ValidTo             *time.Time `json:"valid_to,omitempty"`
}

type ResetCountersRequest struct {
	Verifications bool `json:"verifications"`
	Orders        bool `json:"orders"`
}
