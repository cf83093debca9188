package persistence

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var locationQuery = QuerySpec{
	Resource:      "Location",
	SearchColumns: []string{"code", "name", "address"},
	BoolColumns:   map[string]string{"isActive": "is_active"},
	SortColumns: map[string]string{
		"code": "code",
		"name": "name",
	},
	CodeColumn: "code",
}

var recordQuery = QuerySpec{
	Resource: "Inventory record",
	ExactColumns: map[string]string{
		"productId":   "product_id",
		"locationId":  "location_id",
		"batchNumber": "batch_number",
	},
	RangeColumns: map[string]string{"quantity": "quantity"},
	SortColumns:  map[string]string{"quantity": "quantity"},
}

// GormLocationRepository implements inventory.LocationRepository using GORM
type GormLocationRepository struct {
	*TenantScopedRepository[inventory.Location]
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{NewTenantScopedRepository[inventory.Location](db, locationQuery)}
}

// CountInventoryRecords counts stock records held at the location
func (r *GormLocationRepository) CountInventoryRecords(ctx context.Context, tenantID, locationID uuid.UUID) (int64, error) {
	return r.CountWhere(ctx, tenantID, &inventory.InventoryRecord{}, "location_id", locationID)
}

// GormInventoryRecordRepository implements inventory.RecordRepository
type GormInventoryRecordRepository struct {
	*TenantScopedRepository[inventory.InventoryRecord]
}

// NewGormInventoryRecordRepository creates a new GormInventoryRecordRepository
func NewGormInventoryRecordRepository(db *gorm.DB) *GormInventoryRecordRepository {
	return &GormInventoryRecordRepository{NewTenantScopedRepository[inventory.InventoryRecord](db, recordQuery)}
}

// FindBySlot loads the record for a slot with a row lock
func (r *GormInventoryRecordRepository) FindBySlot(ctx context.Context, tenantID uuid.UUID, slot inventory.Slot) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	err := r.DB().WithContext(ctx).
		Scopes(TenantScope(tenantID), ForUpdate).
		Where("product_id = ? AND location_id = ? AND batch_number = ?", slot.ProductID, slot.LocationID, slot.BatchNumber).
		First(&record).Error
	if err != nil {
		return nil, translate(err, "Inventory record", "")
	}
	return &record, nil
}

// ListForTenant returns every record of the tenant, optionally at one location
func (r *GormInventoryRecordRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]inventory.InventoryRecord, error) {
	q := r.DB().WithContext(ctx).Scopes(TenantScope(tenantID))
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	var records []inventory.InventoryRecord
	err := q.Order("product_id").Order("location_id").Order("batch_number").Find(&records).Error
	return records, err
}

var slotColumns = []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "location_id"}, {Name: "batch_number"}}

// Deposit adds quantity to the slot, creating its record when the slot is
// empty. Insert and increment are one statement, so concurrent deposits into
// an empty slot queue on the unique slot index instead of failing on it.
func (r *GormInventoryRecordRepository) Deposit(ctx context.Context, tenantID uuid.UUID, slot inventory.Slot, quantity int64) (*inventory.InventoryRecord, error) {
	if tenantID == uuid.Nil {
		return nil, ErrTenantRequired
	}
	record, err := inventory.NewInventoryRecord(tenantID, slot, quantity)
	if err != nil {
		return nil, err
	}
	db := r.DB().WithContext(ctx)
	err = db.Clauses(clause.OnConflict{
		Columns: slotColumns,
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   accumulate(db),
			"updated_at": record.UpdatedAt,
		}),
	}).Create(record).Error
	if err != nil {
		return nil, translate(err, "Inventory record", "")
	}
	// the stored row keeps its own id when the slot already existed
	return r.FindBySlot(ctx, tenantID, slot)
}

// accumulate is the conflict update adding the proposed quantity to the
// stored one
func accumulate(db *gorm.DB) clause.Expr {
	if db.Dialector.Name() == "mysql" {
		return gorm.Expr("quantity + VALUES(quantity)")
	}
	return gorm.Expr("inventory_records.quantity + excluded.quantity")
}

// Decrement subtracts quantity only when at least that much is on hand.
// The guard lives in the WHERE clause so concurrent writers can never drive
// the quantity below zero.
func (r *GormInventoryRecordRepository) Decrement(ctx context.Context, tenantID, id uuid.UUID, quantity int64) (bool, error) {
	result := r.DB().WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Scopes(TenantScope(tenantID)).
		Where("id = ? AND quantity >= ?", id, quantity).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Ensure interfaces are implemented
var (
	_ inventory.LocationRepository = (*GormLocationRepository)(nil)
	_ inventory.RecordRepository   = (*GormInventoryRecordRepository)(nil)
)
