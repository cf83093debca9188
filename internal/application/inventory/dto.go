package inventory

import (
	"time"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/google/uuid"
)

// =============================================================================
// Location DTOs
// =============================================================================

// CreateLocationRequest represents a request to create a new location
type CreateLocationRequest struct {
	Code     string `json:"code" binding:"required,min=1,max=50"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Address  string `json:"address" binding:"max=500"`
	IsActive *bool  `json:"isActive"`
}

// UpdateLocationRequest represents a request to update a location
type UpdateLocationRequest struct {
	Code     *string `json:"code" binding:"omitempty,min=1,max=50"`
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
	IsActive *bool   `json:"isActive"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenantId"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToLocationResponse converts a domain Location to LocationResponse
func ToLocationResponse(l *inventory.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		TenantID:  l.TenantID,
		Code:      l.Code,
		Name:      l.Name,
		Address:   l.Address,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// =============================================================================
// Ledger DTOs
// =============================================================================

// AddInput adds stock to one slot. Quantity is checked by the ledger so that
// a non-positive amount reports INVALID_INPUT.
type AddInput struct {
	ProductID   uuid.UUID `json:"productId" binding:"required"`
	LocationID  uuid.UUID `json:"locationId" binding:"required"`
	Quantity    int64     `json:"quantity"`
	BatchNumber *string   `json:"batchNumber"`
}

// RemoveInput removes stock from one slot
type RemoveInput struct {
	ProductID   uuid.UUID `json:"productId" binding:"required"`
	LocationID  uuid.UUID `json:"locationId" binding:"required"`
	Quantity    int64     `json:"quantity"`
	BatchNumber *string   `json:"batchNumber"`
}

// TransferInput moves stock of one product between two slots
type TransferInput struct {
	ProductID         uuid.UUID `json:"productId" binding:"required"`
	SourceLocationID  uuid.UUID `json:"sourceLocationId" binding:"required"`
	SourceBatchNumber *string   `json:"sourceBatchNumber"`
	DestLocationID    uuid.UUID `json:"destLocationId" binding:"required"`
	DestBatchNumber   *string   `json:"destBatchNumber"`
	Quantity          int64     `json:"quantity"`
}

// InventoryRecordResponse represents an inventory record in API responses
type InventoryRecordResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenantId"`
	ProductID   uuid.UUID `json:"productId"`
	LocationID  uuid.UUID `json:"locationId"`
	BatchNumber *string   `json:"batchNumber"`
	Quantity    int64     `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToInventoryRecordResponse converts a domain InventoryRecord to its response
func ToInventoryRecordResponse(r *inventory.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		ID:          r.ID,
		TenantID:    r.TenantID,
		ProductID:   r.ProductID,
		LocationID:  r.LocationID,
		BatchNumber: r.Batch(),
		Quantity:    r.Quantity,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// RemoveResult is the outcome of a removal. Record is nil when the slot was
// depleted and deleted.
type RemoveResult struct {
	Record   *InventoryRecordResponse `json:"record"`
	Depleted bool                     `json:"depleted"`
	Message  string                   `json:"message,omitempty"`
}

// TransferResult is the outcome of a transfer
type TransferResult struct {
	Source         *InventoryRecordResponse `json:"source"`
	SourceDepleted bool                     `json:"sourceDepleted"`
	Destination    InventoryRecordResponse  `json:"destination"`
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
