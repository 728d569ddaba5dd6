package domain

import (
	"time"
)

// Company is a tenant: a calibration service organization whose resource
// usage is metered independently.
type Company struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	City      string    `gorm:"type:text" json:"city"`
	INN       string    `gorm:"type:text" json:"inn"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	RateLimit int       `gorm:"not null;default:1000" json:"rate_limit"`
	CreatedAt time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`

	TariffState *TariffState `gorm:"foreignKey:CompanyID" json:"tariff_state,omitempty"`
}

func (Company) TableName() string {
	return "companies"
}
