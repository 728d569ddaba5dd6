package domain

import (
	"time"
)

// Order is a calendar entry for a field-service visit. Cancelled orders stay
// in the table with Active=false; only active orders count against the
// company's order quota.
type Order struct {
	ID          string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CompanyID   string     `gorm:"type:uuid;not null;index" json:"company_id"`
	EmployeeID  *string    `gorm:"type:uuid" json:"employee_id,omitempty"`
	Address     string     `gorm:"type:text;not null" json:"address"`
	ClientName  string     `gorm:"type:text" json:"client_name"`
	ClientPhone string     `gorm:"type:text" json:"client_phone"`
	Comment     string     `gorm:"type:text" json:"comment"`
	ScheduledAt *time.Time `gorm:"type:timestamp with time zone" json:"scheduled_at,omitempty"`
	Active      bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time  `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Company     *Company   `gorm:"foreignKey:CompanyID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderFilter struct {
	CompanyID string    `json:"company_id"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	Active    *bool     `json:"active"`
	Limit     int       `json:"limit"`
	Offset    int       `json:"offset"`
}
