package catalog

import (
	"context"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	shared.TenantCRUDRepository[Product]

	// CountInventoryRecords counts stock records that reference the product
	CountInventoryRecords(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)

	// CountSaleItems counts sale lines that reference the product
	CountSaleItems(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)

	// FindByIDs loads several products of one tenant at once
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
}

// ProductImageRepository defines the interface for product image persistence
type ProductImageRepository interface {
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductImage, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ProductImage, error)
	Create(ctx context.Context, tenantID uuid.UUID, image *ProductImage) error
	SaveAll(ctx context.Context, tenantID uuid.UUID, images []ProductImage) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
