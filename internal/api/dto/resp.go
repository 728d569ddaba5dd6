package dto

import (
	"time"

	"github.com/verimetr/verimetr-api/internal/service/tariffcache"
)

type LoginResponse struct {
	Token    string           `json:"token"`
	Employee EmployeeResponse `json:"employee"`
}

type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	INN       string    `json:"inn,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EmployeeResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Status      string    `json:"status"`
	SnilsNumber string    `json:"snils_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderResponse struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	EmployeeID  *string    `json:"employee_id,omitempty"`
	Address     string     `json:"address"`
	ClientName  string     `json:"client_name,omitempty"`
	ClientPhone string     `json:"client_phone,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
}

type VerificationResponse struct {
	ID               string    `json:"id"`
	CompanyID        string    `json:"company_id"`
	EmployeeID       string    `json:"employee_id"`
	OrderID          *string   `json:"order_id,omitempty"`
	EquipmentType    string    `json:"equipment_type"`
	SerialNumber     string    `json:"serial_number,omitempty"`
	RegistryNumber   string    `json:"registry_number,omitempty"`
	ActSeries        string    `json:"act_series,omitempty"`
	ActNumber        string    `json:"act_number,omitempty"`
	Suitable         bool      `json:"suitable"`
	VerificationDate time.Time `json:"verification_date"`
	ProtocolKey      string    `json:"protocol_key,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type BaseTariffResponse struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description,omitempty"`
	DurationDays        int    `json:"duration_days"`
	MaxEmployees        *int64 `json:"max_employees"`
	MaxVerifications    *int64 `json:"max_verifications"`
	MaxOrders           *int64 `json:"max_orders"`
	AutoManufactureYear bool   `json:"auto_manufacture_year"`
	AutoTeams           bool   `json:"auto_teams"`
	AutoMetrolog        bool   `json:"auto_metrolog"`
	Archived            bool   `json:"archived"`
}

type TariffStateResponse struct {
	CompanyID         string    `json:"company_id"`
	Title             string    `json:"title"`
	ValidFrom         time.Time `json:"valid_from"`
	ValidTo           time.Time `json:"valid_to"`
	MaxEmployees      *int64    `json:"max_employees"`
	MaxVerifications  *int64    `json:"max_verifications"`
	MaxOrders         *int64    `json:"max_orders"`
	UsedEmployees     int64     `json:"used_employees"`
	UsedVerifications int64     `json:"used_verifications"`
	UsedOrders        int64     `json:"used_orders"`
}

// TariffLimitsResponse is the cached quota view as served to clients.
type TariffLimitsResponse struct {
	*tariffcache.View
}

type TariffHistoryResponse struct {
	ID                 string     `json:"id"`
	CompanyID          string     `json:"company_id"`
	Title              string     `json:"title"`
	ValidFrom          time.Time  `json:"valid_from"`
	ValidTo            time.Time  `json:"valid_to"`
	IsActive           bool       `json:"is_active"`
	DeactivatedAt      *time.Time `json:"deactivated_at,omitempty"`
	DeactivationReason string     `json:"deactivation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type TariffHistoryListResponse struct {
	Items []TariffHistoryResponse `json:"items"`
	Total int64                   `json:"total"`
}

// DocumentListResponse carries the S3 object keys of a company's generated
// documents.
type DocumentListResponse struct {
	Keys []string `json:"keys"`
}

type RecalculateResponse struct {
	Kind        string `json:"kind"`
	ActualCount int64  `json:"actual_count"`
}
