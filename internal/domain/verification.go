package domain

import (
	"time"
)

// VerificationEntry is a single completed equipment verification: the unit
// metered by the verifications quota and the source for generated protocol
// documents.
type VerificationEntry struct {
	ID               string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CompanyID        string    `gorm:"type:uuid;not null;index" json:"company_id"`
	EmployeeID       string    `gorm:"type:uuid;not null" json:"employee_id"`
	OrderID          *string   `gorm:"type:uuid" json:"order_id,omitempty"`
	EquipmentType    string    `gorm:"type:text;not null" json:"equipment_type"`
	SerialNumber     string    `gorm:"type:text" json:"serial_number"`
	RegistryNumber   string    `gorm:"type:text" json:"registry_number"`
	ActSeries        string    `gorm:"type:text" json:"act_series"`
	ActNumber        string    `gorm:"type:text" json:"act_number"`
	Suitable         bool      `gorm:"not null;default:true" json:"suitable"`
	VerificationDate time.Time `gorm:"type:date;not null" json:"verification_date"`
	ProtocolKey      string    `gorm:"type:text" json:"protocol_key,omitempty"`
	CreatedAt        time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Company          *Company  `gorm:"foreignKey:CompanyID" json:"-"`
}

func (VerificationEntry) TableName() string {
	return "verification_entries"
}

type VerificationFilter struct {
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	DateFrom   time.Time `json:"date_from"`
	DateTo     time.Time `json:"date_to"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
}
