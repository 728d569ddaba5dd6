package domain

import (
	"time"
)

// QuotaKind is one of the three metered resource types.
type QuotaKind string

const (
	QuotaEmployees     QuotaKind = "employees"
	QuotaVerifications QuotaKind = "verifications"
	QuotaOrders        QuotaKind = "orders"
)

// QuotaKinds lists every metered kind, in a stable order.
var QuotaKinds = []QuotaKind{QuotaEmployees, QuotaVerifications, QuotaOrders}

func (k QuotaKind) Valid() bool {
	switch k {
	case QuotaEmployees, QuotaVerifications, QuotaOrders:
		return true
	}
	return false
}

// BaseTariff is a plan template. Assigning it to a company materializes a
// TariffState row with the template's limits.
type BaseTariff struct {
	ID                  string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Title               string    `gorm:"type:text;not null" json:"title"`
	Description         string    `gorm:"type:text" json:"description"`
	DurationDays        int       `gorm:"not null;default:30" json:"duration_days"`
	MaxEmployees        *int64    `json:"max_employees"`
	MaxVerifications    *int64    `json:"max_verifications"`
	MaxOrders           *int64    `json:"max_orders"`
	AutoManufactureYear bool      `gorm:"not null;default:false" json:"auto_manufacture_year"`
	AutoTeams           bool      `gorm:"not null;default:false" json:"auto_teams"`
	AutoMetrolog        bool      `gorm:"not null;default:false" json:"auto_metrolog"`
	Archived            bool      `gorm:"not null;default:false" json:"archived"`
	CreatedAt           time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (BaseTariff) TableName() string {
	return "base_tariffs"
}

// TariffState is the per-company quota row: subscription window, three
// (max, used) pairs, and automation flags carried for other subsystems.
// At most one live row exists per company. A nil max means unlimited,
// max=0 forbids the operation entirely, used never goes below zero.
type TariffState struct {
	CompanyID string    `gorm:"primaryKey;type:uuid" json:"company_id"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	ValidFrom time.Time `gorm:"type:timestamp with time zone;not null" json:"valid_from"`
	ValidTo   time.Time `gorm:"type:timestamp with time zone;not null" json:"valid_to"`

	MaxEmployees     *int64 `json:"max_employees"`
	MaxVerifications *int64 `json:"max_verifications"`
	MaxOrders        *int64 `json:"max_orders"`

	UsedEmployees     int64 `gorm:"not null;default:0" json:"used_employees"`
	UsedVerifications int64 `gorm:"not null;default:0" json:"used_verifications"`
	UsedOrders        int64 `gorm:"not null;default:0" json:"used_orders"`

	CarryOverVerifications bool `gorm:"not null;default:false" json:"carry_over_verifications"`
	CarryOverOrders        bool `gorm:"not null;default:false" json:"carry_over_orders"`

	AutoManufactureYear bool `gorm:"not null;default:false" json:"auto_manufacture_year"`
	AutoTeams           bool `gorm:"not null;default:false" json:"auto_teams"`
	AutoMetrolog        bool `gorm:"not null;default:false" json:"auto_metrolog"`

	BaseTariffID *string   `gorm:"type:uuid" json:"base_tariff_id,omitempty"`
	CreatedAt    time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TariffState) TableName() string {
	return "company_tariff_states"
}

// Max returns the limit for a kind; nil means unlimited.
func (s *TariffState) Max(kind QuotaKind) *int64 {
	switch kind {
	case QuotaEmployees:
		return s.MaxEmployees
	case QuotaVerifications:
		return s.MaxVerifications
	case QuotaOrders:
		return s.MaxOrders
	}
	return nil
}

// Used returns the consumed counter for a kind.
func (s *TariffState) Used(kind QuotaKind) int64 {
	switch kind {
	case QuotaEmployees:
		return s.UsedEmployees
	case QuotaVerifications:
		return s.UsedVerifications
	case QuotaOrders:
		return s.UsedOrders
	}
	return 0
}

// IsExpired reports whether the subscription window has passed. Expiry is
// informational in the read path; it does not by itself block mutation.
func (s *TariffState) IsExpired(now time.Time) bool {
	return !s.ValidTo.IsZero() && s.ValidTo.Before(now)
}

// UsageDelta carries per-kind deltas for a single atomic usage update.
// Zero fields are left untouched.
type UsageDelta struct {
	Employees     int64
	Verifications int64
	Orders        int64
}

// IsZero reports whether the delta would change nothing.
func (d UsageDelta) IsZero() bool {
	return d.Employees <= 0 && d.Verifications <= 0 && d.Orders <= 0
}

// DeltaFor builds a UsageDelta touching exactly one kind.
func DeltaFor(kind QuotaKind, n int64) UsageDelta {
	switch kind {
	case QuotaEmployees:
		return UsageDelta{Employees: n}
	case QuotaVerifications:
		return UsageDelta{Verifications: n}
	case QuotaOrders:
		return UsageDelta{Orders: n}
	}
	return UsageDelta{}
}

// OptionalLimit distinguishes "leave the column alone" (Set=false) from
// "overwrite with Value" (Set=true, Value may be nil for unlimited).
type OptionalLimit struct {
	Set   bool
	Value *int64
}

// Limit marks a bounded value for a TariffLimitsUpdate field.
func Limit(v int64) OptionalLimit {
	return OptionalLimit{Set: true, Value: &v}
}

// Unlimited marks a field for overwrite with no ceiling.
func Unlimited() OptionalLimit {
	return OptionalLimit{Set: true}
}

// TariffLimitsUpdate is the statically-enumerated field set allowed through
// the direct limit-edit path. Nothing outside these fields can be touched.
type TariffLimitsUpdate struct {
	MaxEmployees     OptionalLimit
	MaxVerifications OptionalLimit
	MaxOrders        OptionalLimit
	ValidFrom        *time.Time
	ValidTo          *time.Time
}

// IsZero reports whether the update would change nothing.
func (u TariffLimitsUpdate) IsZero() bool {
	return !u.MaxEmployees.Set && !u.MaxVerifications.Set && !u.MaxOrders.Set &&
		u.ValidFrom == nil && u.ValidTo == nil
}

// TariffHistory is the append-only audit trail of plan assignments. Exactly
// one row per company is active at a time.
type TariffHistory struct {
	ID                 string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CompanyID          string     `gorm:"type:uuid;not null;index" json:"company_id"`
	BaseTariffID       *string    `gorm:"type:uuid" json:"base_tariff_id,omitempty"`
	Title              string     `gorm:"type:text;not null" json:"title"`
	ValidFrom          time.Time  `gorm:"type:timestamp with time zone;not null" json:"valid_from"`
	ValidTo            time.Time  `gorm:"type:timestamp with time zone;not null" json:"valid_to"`
	IsActive           bool       `gorm:"not null;default:true" json:"is_active"`
	DeactivatedAt      *time.Time `gorm:"type:timestamp with time zone" json:"deactivated_at,omitempty"`
	DeactivationReason string     `gorm:"type:text" json:"deactivation_reason,omitempty"`
	CreatedAt          time.Time  `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TariffHistory) TableName() string {
	return "company_tariff_history"
}
