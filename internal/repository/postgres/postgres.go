package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/config"
	"github.com/verimetr/verimetr-api/internal/repository"
)

type postgresRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB

	companyRepo       repository.CompanyRepository
	employeeRepo      repository.EmployeeRepository
	orderRepo         repository.OrderRepository
	verificationRepo  repository.VerificationRepository
	baseTariffRepo    repository.BaseTariffRepository
	tariffStateRepo   repository.TariffStateRepository
	tariffHistoryRepo repository.TariffHistoryRepository
}

func NewPostgresRepository(dbConnections *config.DatabaseConnections) repository.Repository {
	return newWithDatabases(dbConnections.Writer, dbConnections.Reader)
}

func newWithDatabases(writerDB, readerDB *gorm.DB) *postgresRepository {
	return &postgresRepository{
		writerDB:          writerDB,
		readerDB:          readerDB,
		companyRepo:       NewCompanyRepository(writerDB, readerDB),
		employeeRepo:      NewEmployeeRepository(writerDB, readerDB),
		orderRepo:         NewOrderRepository(writerDB, readerDB),
		verificationRepo:  NewVerificationRepository(writerDB, readerDB),
		baseTariffRepo:    NewBaseTariffRepository(writerDB, readerDB),
		tariffStateRepo:   NewTariffStateRepository(writerDB, readerDB),
		tariffHistoryRepo: NewTariffHistoryRepository(writerDB, readerDB),
	}
}

func (r *postgresRepository) Company() repository.CompanyRepository {
	return r.companyRepo
}

func (r *postgresRepository) Employee() repository.EmployeeRepository {
	return r.employeeRepo
}

func (r *postgresRepository) Order() repository.OrderRepository {
	return r.orderRepo
}

func (r *postgresRepository) Verification() repository.VerificationRepository {
	return r.verificationRepo
}

func (r *postgresRepository) BaseTariff() repository.BaseTariffRepository {
	return r.baseTariffRepo
}

func (r *postgresRepository) TariffState() repository.TariffStateRepository {
	return r.tariffStateRepo
}

func (r *postgresRepository) TariffHistory() repository.TariffHistoryRepository {
	return r.tariffHistoryRepo
}

// Transaction binds all sub-repositories to one writer transaction. Reads
// inside the transaction also go through the writer connection so that row
// locks and uncommitted writes are visible to fn.
func (r *postgresRepository) Transaction(ctx context.Context, fn func(txRepo repository.Repository) error) error {
	return r.writerDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newWithDatabases(tx, tx))
	})
}
