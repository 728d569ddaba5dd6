package domain

import (
	"time"

	"gorm.io/gorm"
)

// Employee is a field verifier or office worker attached to a company.
// Employees are soft-deleted so that historical verification records keep
// their author; quota counting ignores deleted rows.
type Employee struct {
	ID           string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CompanyID    string         `gorm:"type:uuid;not null;index" json:"company_id"`
	Email        string         `gorm:"type:text;not null;unique" json:"email"`
	FullName     string         `gorm:"type:text;not null" json:"full_name"`
	Status       string         `gorm:"type:text;not null;default:'verifier'" json:"status"`
	PasswordHash string         `gorm:"type:text;not null" json:"-"`
	SnilsNumber  string         `gorm:"type:text" json:"snils_number,omitempty"`
	CreatedAt    time.Time      `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Company      *Company       `gorm:"foreignKey:CompanyID" json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}

type EmployeeFilter struct {
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}
