package persistence

import (
	"context"

	"github.com/bizledger/backend/internal/application/uow"
	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction bound to ctx. Any error, or
// a panic, rolls the transaction back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories builds repositories on the open transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Tenants() identity.TenantRepository {
	return NewGormTenantRepository(r.tx)
}

func (r *gormTransactionalRepositories) Users() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

func (r *gormTransactionalRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductImages() catalog.ProductImageRepository {
	return NewGormProductImageRepository(r.tx)
}

func (r *gormTransactionalRepositories) Locations() inventory.LocationRepository {
	return NewGormLocationRepository(r.tx)
}

func (r *gormTransactionalRepositories) Inventory() inventory.RecordRepository {
	return NewGormInventoryRecordRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() trade.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) InvoiceSequences() trade.InvoiceSequenceRepository {
	return NewGormInvoiceSequenceRepository(r.tx)
}

func (r *gormTransactionalRepositories) ReportDefinitions() report.DefinitionRepository {
	return NewGormReportDefinitionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Executions() report.ExecutionRepository {
	return NewGormReportExecutionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Dashboards() report.DashboardRepository {
	return NewGormDashboardRepository(r.tx)
}

// Ensure interfaces are implemented
var (
	_ uow.TransactionScope          = (*GormTransactionScope)(nil)
	_ uow.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
