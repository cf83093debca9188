// Package uow defines the unit of work shared by the application services.
// Every operation that touches several records runs inside one
// TransactionScope so that it either commits completely or leaves nothing
// behind.
package uow

import (
	"context"

	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to repositories.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a
// transaction. All repositories returned share the same transaction.
type TransactionalRepositories interface {
	Tenants() identity.TenantRepository
	Users() identity.UserRepository
	Customers() partner.CustomerRepository
	Products() catalog.ProductRepository
	ProductImages() catalog.ProductImageRepository
	Locations() inventory.LocationRepository
	Inventory() inventory.RecordRepository
	Sales() trade.SaleRepository
	Payments() trade.PaymentRepository
	InvoiceSequences() trade.InvoiceSequenceRepository
	ReportDefinitions() report.DefinitionRepository
	Executions() report.ExecutionRepository
	Dashboards() report.DashboardRepository
}
