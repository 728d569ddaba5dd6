package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verimetr/verimetr-api/internal/domain"
)

// TariffStateRepository stores one quota row per company. Admission checks
// read it under FOR UPDATE; usage mutations are single atomic statements so
// concurrent writers can never observe a torn counter.
type TariffStateRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewTariffStateRepository(writerDB, readerDB *gorm.DB) *TariffStateRepository {
	return &TariffStateRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

// Get returns the company's quota state, or (nil, nil) when no tariff is
// assigned. With lock=true the row is read FOR UPDATE on the writer
// connection and stays locked until the enclosing transaction ends.
func (r *TariffStateRepository) Get(ctx context.Context, companyID string, lock bool) (*domain.TariffState, error) {
	db := r.readerDB.WithContext(ctx)
	if lock {
		db = r.writerDB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var state domain.TariffState
	if err := db.First(&state, "company_id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// Upsert creates or fully replaces the quota state keyed by company.
func (r *TariffStateRepository) Upsert(ctx context.Context, state *domain.TariffState) (*domain.TariffState, error) {
	err := r.writerDB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}},
			UpdateAll: true,
		}).
		Create(state).Error
	if err != nil {
		return nil, err
	}
	return state, nil
}

// UpdateLimits overwrites only the supplied limit fields without loading the
// row. The update struct enumerates every column this path may touch.
func (r *TariffStateRepository) UpdateLimits(ctx context.Context, companyID string, update domain.TariffLimitsUpdate) (bool, error) {
	if update.IsZero() {
		return false, nil
	}

	values := map[string]any{}
	if update.MaxEmployees.Set {
		values["max_employees"] = update.MaxEmployees.Value
	}
	if update.MaxVerifications.Set {
		values["max_verifications"] = update.MaxVerifications.Value
	}
	if update.MaxOrders.Set {
		values["max_orders"] = update.MaxOrders.Value
	}
	if update.ValidFrom != nil {
		values["valid_from"] = *update.ValidFrom
	}
	if update.ValidTo != nil {
		values["valid_to"] = *update.ValidTo
	}

	result := r.writerDB.WithContext(ctx).
		Model(&domain.TariffState{}).
		Where("company_id = ?", companyID).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementUsage adds the supplied deltas to the used counters in a single
// atomic UPDATE. It does not check limits; admission is decided before this
// call by the quota guard. Returns false when no positive delta is supplied
// or no row exists.
func (r *TariffStateRepository) IncrementUsage(ctx context.Context, companyID string, delta domain.UsageDelta) (bool, error) {
	values := map[string]any{}
	if delta.Employees > 0 {
		values["used_employees"] = gorm.Expr("used_employees + ?", delta.Employees)
	}
	if delta.Verifications > 0 {
		values["used_verifications"] = gorm.Expr("used_verifications + ?", delta.Verifications)
	}
	if delta.Orders > 0 {
		values["used_orders"] = gorm.Expr("used_orders + ?", delta.Orders)
	}
	if len(values) == 0 {
		return false, nil
	}

	result := r.writerDB.WithContext(ctx).
		Model(&domain.TariffState{}).
		Where("company_id = ?", companyID).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementUsageSafe subtracts deltas with a GREATEST(..., 0) clamp applied
// in the statement itself, so two concurrent decrements can never drive a
// counter negative the way an application-level read-modify-write could.
func (r *TariffStateRepository) DecrementUsageSafe(ctx context.Context, companyID string, delta domain.UsageDelta) (bool, error) {
	values := map[string]any{}
	if delta.Employees > 0 {
		values["used_employees"] = gorm.Expr("GREATEST(used_employees - ?, 0)", delta.Employees)
	}
	if delta.Verifications > 0 {
		values["used_verifications"] = gorm.Expr("GREATEST(used_verifications - ?, 0)", delta.Verifications)
	}
	if delta.Orders > 0 {
		values["used_orders"] = gorm.Expr("GREATEST(used_orders - ?, 0)", delta.Orders)
	}
	if len(values) == 0 {
		return false, nil
	}

	result := r.writerDB.WithContext(ctx).
		Model(&domain.TariffState{}).
		Where("company_id = ?", companyID).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetUsage overwrites one used counter with an absolute value. Used by
// reconciliation, which recounts ground truth under the row lock.
func (r *TariffStateRepository) SetUsage(ctx context.Context, companyID string, kind domain.QuotaKind, value int64) (bool, error) {
	column, err := usedColumn(kind)
	if err != nil {
		return false, err
	}
	if value < 0 {
		value = 0
	}

	result := r.writerDB.WithContext(ctx).
		Model(&domain.TariffState{}).
		Where("company_id = ?", companyID).
		Update(column, value)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ResetCounters zeroes the selected used counters (tariff-period rollover).
func (r *TariffStateRepository) ResetCounters(ctx context.Context, companyID string, kinds ...domain.QuotaKind) (bool, error) {
	values := map[string]any{}
	for _, kind := range kinds {
		column, err := usedColumn(kind)
		if err != nil {
			return false, err
		}
		values[column] = 0
	}
	if len(values) == 0 {
		return false, nil
	}

	result := r.writerDB.WithContext(ctx).
		Model(&domain.TariffState{}).
		Where("company_id = ?", companyID).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountActual counts live domain entities of a kind for the company,
// independent of the stored counter.
func (r *TariffStateRepository) CountActual(ctx context.Context, companyID string, kind domain.QuotaKind) (int64, error) {
	db := r.writerDB.WithContext(ctx)

	var count int64
	var err error
	switch kind {
	case domain.QuotaEmployees:
		err = db.Model(&domain.Employee{}).
			Where("company_id = ?", companyID).
			Count(&count).Error
	case domain.QuotaVerifications:
		err = db.Model(&domain.VerificationEntry{}).
			Where("company_id = ?", companyID).
			Count(&count).Error
	case domain.QuotaOrders:
		err = db.Model(&domain.Order{}).
			Where("company_id = ? AND active = ?", companyID, true).
			Count(&count).Error
	default:
		return 0, fmt.Errorf("unknown quota kind %q", kind)
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the quota state (plan unassignment or company deletion).
func (r *TariffStateRepository) Delete(ctx context.Context, companyID string) (bool, error) {
	result := r.writerDB.WithContext(ctx).
		Delete(&domain.TariffState{}, "company_id = ?", companyID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func usedColumn(kind domain.QuotaKind) (string, error) {
	switch kind {
	case domain.QuotaEmployees:
		return "used_employees", nil
	case domain.QuotaVerifications:
		return "used_verifications", nil
	case domain.QuotaOrders:
		return "used_orders", nil
	}
	return "", fmt.Errorf("unknown quota kind %q", kind)
}
