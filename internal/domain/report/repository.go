package report

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// DefinitionRepository defines the interface for report definition persistence
type DefinitionRepository interface {
	shared.TenantCRUDRepository[Definition]

	// CreateBatch inserts several definitions at once
	CreateBatch(ctx context.Context, tenantID uuid.UUID, defs []*Definition) error

	// CountWidgets counts dashboard widgets that point at the definition
	CountWidgets(ctx context.Context, tenantID, definitionID uuid.UUID) (int64, error)
}

// ExecutionRepository defines the interface for execution history persistence
type ExecutionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Execution, error)

	// FindByDefinition lists executions of a definition, newest first
	FindByDefinition(ctx context.Context, tenantID, definitionID uuid.UUID, filter shared.Filter) (shared.Paginated[Execution], error)

	Create(ctx context.Context, tenantID uuid.UUID, execution *Execution) error
	Update(ctx context.Context, tenantID uuid.UUID, execution *Execution) error

	// DeleteByDefinition removes the history of a definition
	DeleteByDefinition(ctx context.Context, tenantID, definitionID uuid.UUID) error

	// DeleteFinishedBefore removes completed runs started before cutoff.
	// Running executions are never removed.
	DeleteFinishedBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error)
}

// DashboardRepository defines the interface for dashboard persistence
type DashboardRepository interface {
	// FindByIDForTenant loads a dashboard with its widgets in order
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Dashboard, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Dashboard], error)

	// Create inserts the dashboard and its widgets
	Create(ctx context.Context, tenantID uuid.UUID, dashboard *Dashboard) error

	// Save updates the header and replaces the stored widgets with
	// dashboard.Widgets
	Save(ctx context.Context, tenantID uuid.UUID, dashboard *Dashboard) error

	// ClearDefault unsets the default flag on every other dashboard
	ClearDefault(ctx context.Context, tenantID, exceptID uuid.UUID) error

	// DeleteWithWidgets removes the dashboard and its widgets
	DeleteWithWidgets(ctx context.Context, tenantID, id uuid.UUID) error
}

// DataSource is the read-only, tenant-scoped view generators aggregate over.
// Aggregation happens in Go so every generator behaves the same on every
// store.
type DataSource interface {
	// SalesInPeriod returns sales with items dated in [from, to); zero
	// bounds are open
	SalesInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]trade.Sale, error)
	PaymentsInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]trade.Payment, error)
	Products(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error)
	Customers(ctx context.Context, tenantID uuid.UUID) ([]partner.Customer, error)
	Vendors(ctx context.Context, tenantID uuid.UUID) ([]partner.Vendor, error)
	InventoryRecords(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]inventory.InventoryRecord, error)
}
