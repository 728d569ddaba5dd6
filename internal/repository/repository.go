package repository

import (
	"context"

	"github.com/verimetr/verimetr-api/internal/domain"
)

//go:generate mockery --name CompanyRepository --output ../mocks
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) (*domain.Company, error)
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	Update(ctx context.Context, company *domain.Company) error
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Company, int64, error)
}

//go:generate mockery --name EmployeeRepository --output ../mocks
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error)
	// ReplaceCompanySet removes every employee of the company not listed in
	// keepIDs and inserts the given new employees as one batch. Counter
	// drift from this bulk path is corrected by reconciliation.
	ReplaceCompanySet(ctx context.Context, companyID string, keepIDs []string, add []domain.Employee) error
}

//go:generate mockery --name OrderRepository --output ../mocks
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	// Deactivate marks an order cancelled; it stays in the table for history.
	Deactivate(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

//go:generate mockery --name VerificationRepository --output ../mocks
type VerificationRepository interface {
	Create(ctx context.Context, entry *domain.VerificationEntry) (*domain.VerificationEntry, error)
	GetByID(ctx context.Context, id string) (*domain.VerificationEntry, error)
	Update(ctx context.Context, entry *domain.VerificationEntry) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationEntry, error)
}

//go:generate mockery --name BaseTariffRepository --output ../mocks
type BaseTariffRepository interface {
	Create(ctx context.Context, tariff *domain.BaseTariff) (*domain.BaseTariff, error)
	GetByID(ctx context.Context, id string) (*domain.BaseTariff, error)
	Update(ctx context.Context, tariff *domain.BaseTariff) error
	Archive(ctx context.Context, id string) error
	List(ctx context.Context, includeArchived bool) ([]domain.BaseTariff, error)
}

// TariffStateRepository is the usage store: durable storage and atomic
// low-level mutation of per-company quota rows. Get with lock=true takes an
// exclusive row lock held until the enclosing transaction ends. An absent
// row is reported as (nil, nil), never as an error: absence means "no tariff
// assigned", which is distinct from "unlimited".
//
//go:generate mockery --name TariffStateRepository --output ../mocks
type TariffStateRepository interface {
	Get(ctx context.Context, companyID string, lock bool) (*domain.TariffState, error)
	Upsert(ctx context.Context, state *domain.TariffState) (*domain.TariffState, error)
	UpdateLimits(ctx context.Context, companyID string, update domain.TariffLimitsUpdate) (bool, error)
	IncrementUsage(ctx context.Context, companyID string, delta domain.UsageDelta) (bool, error)
	DecrementUsageSafe(ctx context.Context, companyID string, delta domain.UsageDelta) (bool, error)
	SetUsage(ctx context.Context, companyID string, kind domain.QuotaKind, value int64) (bool, error)
	ResetCounters(ctx context.Context, companyID string, kinds ...domain.QuotaKind) (bool, error)
	CountActual(ctx context.Context, companyID string, kind domain.QuotaKind) (int64, error)
	Delete(ctx context.Context, companyID string) (bool, error)
}

//go:generate mockery --name TariffHistoryRepository --output ../mocks
type TariffHistoryRepository interface {
	Append(ctx context.Context, history *domain.TariffHistory) (*domain.TariffHistory, error)
	GetActiveByCompany(ctx context.Context, companyID string) (*domain.TariffHistory, error)
	DeactivatePrevious(ctx context.Context, companyID, reason string) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.TariffHistory, int64, error)
}

//go:generate mockery --name Repository --output ../mocks
type Repository interface {
	Company() CompanyRepository
	Employee() EmployeeRepository
	Order() OrderRepository
	Verification() VerificationRepository
	BaseTariff() BaseTariffRepository
	TariffState() TariffStateRepository
	TariffHistory() TariffHistoryRepository

	// Transaction runs fn with a Repository bound to a single write
	// transaction. Row locks taken through the bound repository are held
	// until fn returns and the transaction commits or rolls back.
	Transaction(ctx context.Context, fn func(txRepo Repository) error) error
}
