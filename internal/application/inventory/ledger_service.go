package inventory

import (
	"context"
	"errors"

	"github.com/bizledger/backend/internal/application/uow"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Movement names reported to LedgerMetrics
const (
	MovementAdd      = "add"
	MovementRemove   = "remove"
	MovementTransfer = "transfer"
)

// LedgerMetrics receives stock movement counters
type LedgerMetrics interface {
	RecordInventoryMovement(ctx context.Context, tenantID uuid.UUID, movement string, quantity int64)
	RecordInventoryShortfall(ctx context.Context, tenantID uuid.UUID)
}

type noopLedgerMetrics struct{}

func (noopLedgerMetrics) RecordInventoryMovement(context.Context, uuid.UUID, string, int64) {}
func (noopLedgerMetrics) RecordInventoryShortfall(context.Context, uuid.UUID)               {}

// LedgerService keeps per-slot stock quantities. A slot is one
// (product, location, batch) triple; a slot with no stock has no record.
type LedgerService struct {
	recordRepo inventory.RecordRepository
	scope      uow.TransactionScope
	metrics    LedgerMetrics
	logger     *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(recordRepo inventory.RecordRepository, scope uow.TransactionScope, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		recordRepo: recordRepo,
		scope:      scope,
		metrics:    noopLedgerMetrics{},
		logger:     logger,
	}
}

// SetMetrics sets the movement counters
func (s *LedgerService) SetMetrics(m LedgerMetrics) {
	if m != nil {
		s.metrics = m
	}
}

// GetByID retrieves one inventory record
func (s *LedgerService) GetByID(ctx context.Context, tenantID, recordID uuid.UUID) (*InventoryRecordResponse, error) {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, recordID)
	if err != nil {
		return nil, err
	}
	response := ToInventoryRecordResponse(record)
	return &response, nil
}

// List retrieves a page of inventory records
func (s *LedgerService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[InventoryRecordResponse], error) {
	page, err := s.recordRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[InventoryRecordResponse]{}, err
	}
	return shared.MapPaginated(page, func(r inventory.InventoryRecord) InventoryRecordResponse {
		return ToInventoryRecordResponse(&r)
	}), nil
}

// Add increases the quantity of a slot, creating its record when the slot
// holds nothing yet
func (s *LedgerService) Add(ctx context.Context, tenantID uuid.UUID, in AddInput) (*InventoryRecordResponse, error) {
	if err := inventory.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	batch, err := inventory.NormalizeBatch(in.BatchNumber)
	if err != nil {
		return nil, err
	}
	slot := inventory.Slot{ProductID: in.ProductID, LocationID: in.LocationID, BatchNumber: batch}

	var record *inventory.InventoryRecord
	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if err := ensureSlotTargets(ctx, repos, tenantID, in.ProductID, in.LocationID); err != nil {
			return err
		}
		record, err = deposit(ctx, repos.Inventory(), tenantID, slot, in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInventoryMovement(ctx, tenantID, MovementAdd, in.Quantity)
	s.logger.Debug("inventory added",
		zap.String("tenant_id", tenantID.String()),
		zap.String("record_id", record.ID.String()),
		zap.Int64("quantity", in.Quantity),
	)
	response := ToInventoryRecordResponse(record)
	return &response, nil
}

// Remove decreases the quantity of a slot. A slot brought to zero is deleted
// and the result reports the depletion.
func (s *LedgerService) Remove(ctx context.Context, tenantID uuid.UUID, in RemoveInput) (*RemoveResult, error) {
	if err := inventory.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	batch, err := inventory.NormalizeBatch(in.BatchNumber)
	if err != nil {
		return nil, err
	}
	slot := inventory.Slot{ProductID: in.ProductID, LocationID: in.LocationID, BatchNumber: batch}

	var (
		record   *inventory.InventoryRecord
		depleted bool
	)
	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		record, depleted, err = withdraw(ctx, repos.Inventory(), tenantID, slot, in.Quantity)
		return err
	})
	if err != nil {
		s.noteShortfall(ctx, tenantID, err)
		return nil, err
	}

	s.metrics.RecordInventoryMovement(ctx, tenantID, MovementRemove, in.Quantity)
	if depleted {
		return &RemoveResult{Depleted: true, Message: "Inventory depleted and record removed"}, nil
	}
	response := ToInventoryRecordResponse(record)
	return &RemoveResult{Record: &response}, nil
}

// Transfer moves quantity from one slot to another slot of the same product.
// Both sides commit together or not at all, so the product total is
// unchanged.
func (s *LedgerService) Transfer(ctx context.Context, tenantID uuid.UUID, in TransferInput) (*TransferResult, error) {
	if err := inventory.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	sourceBatch, err := inventory.NormalizeBatch(in.SourceBatchNumber)
	if err != nil {
		return nil, err
	}
	destBatch, err := inventory.NormalizeBatch(in.DestBatchNumber)
	if err != nil {
		return nil, err
	}
	source := inventory.Slot{ProductID: in.ProductID, LocationID: in.SourceLocationID, BatchNumber: sourceBatch}
	dest := inventory.Slot{ProductID: in.ProductID, LocationID: in.DestLocationID, BatchNumber: destBatch}
	if source.SameStorage(dest) {
		return nil, shared.InvalidInput("Source and destination must differ in location or batch")
	}

	var (
		sourceRecord *inventory.InventoryRecord
		destRecord   *inventory.InventoryRecord
		depleted     bool
	)
	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if err := ensureSlotTargets(ctx, repos, tenantID, in.ProductID, in.DestLocationID); err != nil {
			return err
		}
		if err := lockSlots(ctx, repos.Inventory(), tenantID, source, dest); err != nil {
			return err
		}
		sourceRecord, depleted, err = withdraw(ctx, repos.Inventory(), tenantID, source, in.Quantity)
		if err != nil {
			return err
		}
		destRecord, err = deposit(ctx, repos.Inventory(), tenantID, dest, in.Quantity)
		return err
	})
	if err != nil {
		s.noteShortfall(ctx, tenantID, err)
		return nil, err
	}

	s.metrics.RecordInventoryMovement(ctx, tenantID, MovementTransfer, in.Quantity)
	result := &TransferResult{
		SourceDepleted: depleted,
		Destination:    ToInventoryRecordResponse(destRecord),
	}
	if !depleted {
		src := ToInventoryRecordResponse(sourceRecord)
		result.Source = &src
	}
	return result, nil
}

func (s *LedgerService) noteShortfall(ctx context.Context, tenantID uuid.UUID, err error) {
	if shared.IsCode(err, shared.CodeInsufficientInventory) {
		s.metrics.RecordInventoryShortfall(ctx, tenantID)
	}
}

// ensureSlotTargets checks that the product and location belong to the tenant
func ensureSlotTargets(ctx context.Context, repos uow.TransactionalRepositories, tenantID, productID, locationID uuid.UUID) error {
	if _, err := repos.Products().FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return err
	}
	if _, err := repos.Locations().FindByIDForTenant(ctx, tenantID, locationID); err != nil {
		return err
	}
	return nil
}

// deposit adds quantity to the slot's record or creates it
func deposit(ctx context.Context, repo inventory.RecordRepository, tenantID uuid.UUID, slot inventory.Slot, quantity int64) (*inventory.InventoryRecord, error) {
	return repo.Deposit(ctx, tenantID, slot, quantity)
}

// lockSlots takes the row locks of both slots in slot order, so transfers
// running in opposite directions queue instead of deadlocking. Empty slots
// have no row to lock.
func lockSlots(ctx context.Context, repo inventory.RecordRepository, tenantID uuid.UUID, a, b inventory.Slot) error {
	if b.Before(a) {
		a, b = b, a
	}
	for _, slot := range []inventory.Slot{a, b} {
		if _, err := repo.FindBySlot(ctx, tenantID, slot); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
	}
	return nil
}

// withdraw removes quantity from the slot. It reports true when the record
// reached zero and was deleted.
func withdraw(ctx context.Context, repo inventory.RecordRepository, tenantID uuid.UUID, slot inventory.Slot, quantity int64) (*inventory.InventoryRecord, bool, error) {
	record, err := repo.FindBySlot(ctx, tenantID, slot)
	if err != nil {
		return nil, false, err
	}
	if record.Quantity < quantity {
		return nil, false, inventory.Insufficient(record.Quantity, quantity)
	}

	ok, err := repo.Decrement(ctx, tenantID, record.ID, quantity)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// Another writer got there first; report what is left now.
		latest, err := repo.FindByIDForTenant(ctx, tenantID, record.ID)
		if err != nil {
			return nil, false, inventory.Insufficient(0, quantity)
		}
		return nil, false, inventory.Insufficient(latest.Quantity, quantity)
	}

	record.Quantity -= quantity
	if record.Quantity > 0 {
		return record, false, nil
	}
	if err := repo.DeleteForTenant(ctx, tenantID, record.ID); err != nil {
		return nil, false, err
	}
	return nil, true, nil
}
