package inventory

import (
	"context"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LocationRepository defines the interface for location persistence
type LocationRepository interface {
	shared.TenantCRUDRepository[Location]

	// CountInventoryRecords counts stock records held at the location
	CountInventoryRecords(ctx context.Context, tenantID, locationID uuid.UUID) (int64, error)
}

// RecordRepository defines the interface for inventory record persistence.
// Mutating methods are expected to run inside a transaction.
type RecordRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*InventoryRecord, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[InventoryRecord], error)

	// FindBySlot loads the record for a slot, locking the row for update
	// where the store supports it. Returns shared.ErrNotFound when absent.
	FindBySlot(ctx context.Context, tenantID uuid.UUID, slot Slot) (*InventoryRecord, error)

	// ListForTenant returns every record matching the optional location
	// filter, for aggregation
	ListForTenant(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]InventoryRecord, error)

	Create(ctx context.Context, tenantID uuid.UUID, record *InventoryRecord) error

	// Deposit adds quantity to the slot, creating its record when the slot
	// holds nothing, and returns the stored record
	Deposit(ctx context.Context, tenantID uuid.UUID, slot Slot, quantity int64) (*InventoryRecord, error)

	// Decrement subtracts quantity only when at least that much is on hand.
	// It returns false without changing anything on a shortfall.
	Decrement(ctx context.Context, tenantID, id uuid.UUID, quantity int64) (bool, error)

	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
