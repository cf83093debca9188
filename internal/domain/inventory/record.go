package inventory

import (
	"bytes"
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultLowStockThreshold is used when a caller does not supply a threshold.
// A product is low on stock when its total quantity is strictly below it.
const DefaultLowStockThreshold = 10

// MaxBatchNumberLength bounds batch identifiers
const MaxBatchNumberLength = 100

// InventoryRecord is the quantity of one product at one location in one batch.
// The absent batch is stored as the empty string so the slot stays unique.
type InventoryRecord struct {
	shared.TenantEntity
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	LocationID  uuid.UUID `gorm:"type:uuid;not null;index" json:"locationId"`
	BatchNumber string    `gorm:"type:varchar(100);not null;default:''" json:"-"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// Batch returns the batch number, nil for the unbatched slot
func (r *InventoryRecord) Batch() *string {
	return BatchPointer(r.BatchNumber)
}

// Slot returns the identifying key of the record
func (r *InventoryRecord) Slot() Slot {
	return Slot{ProductID: r.ProductID, LocationID: r.LocationID, BatchNumber: r.BatchNumber}
}

// Slot identifies an inventory record inside a tenant
type Slot struct {
	ProductID   uuid.UUID
	LocationID  uuid.UUID
	BatchNumber string
}

// SameStorage reports whether two slots share location and batch
func (s Slot) SameStorage(other Slot) bool {
	return s.LocationID == other.LocationID && s.BatchNumber == other.BatchNumber
}

// Before orders slots of one tenant by product, location and batch. Writers
// touching several slots lock them in this order.
func (s Slot) Before(other Slot) bool {
	if c := bytes.Compare(s.ProductID[:], other.ProductID[:]); c != 0 {
		return c < 0
	}
	if c := bytes.Compare(s.LocationID[:], other.LocationID[:]); c != 0 {
		return c < 0
	}
	return s.BatchNumber < other.BatchNumber
}

// NewInventoryRecord creates a record holding quantity units
func NewInventoryRecord(tenantID uuid.UUID, slot Slot, quantity int64) (*InventoryRecord, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	return &InventoryRecord{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProductID:    slot.ProductID,
		LocationID:   slot.LocationID,
		BatchNumber:  slot.BatchNumber,
		Quantity:     quantity,
	}, nil
}

// ValidateQuantity rejects non-positive movement quantities
func ValidateQuantity(quantity int64) error {
	if quantity <= 0 {
		return shared.InvalidInput("Quantity must be greater than zero")
	}
	return nil
}

// NormalizeBatch converts an optional batch number into its stored form.
// nil means the unbatched slot; a present batch must not be blank.
func NormalizeBatch(batch *string) (string, error) {
	if batch == nil {
		return "", nil
	}
	b := strings.TrimSpace(*batch)
	if b == "" {
		return "", shared.InvalidInput("Batch number cannot be blank; omit it for unbatched stock")
	}
	if len(b) > MaxBatchNumberLength {
		return "", shared.InvalidInput("Batch number cannot exceed 100 characters")
	}
	return b, nil
}

// BatchPointer converts a stored batch number back to its optional form
func BatchPointer(batch string) *string {
	if batch == "" {
		return nil
	}
	b := batch
	return &b
}

// Insufficient builds the INSUFFICIENT_INVENTORY error reported when a
// removal asks for more than the slot holds
func Insufficient(available, requested int64) *shared.DomainError {
	return shared.ErrInsufficientInventory.WithDetails(map[string]any{
		"available": available,
		"requested": requested,
	})
}
