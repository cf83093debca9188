package partner

import (
	"context"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	shared.TenantCRUDRepository[Customer]

	// CountSales counts the sales recorded against a customer
	CountSales(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	shared.TenantCRUDRepository[Vendor]

	// CountProducts counts the products supplied by a vendor
	CountProducts(ctx context.Context, tenantID, vendorID uuid.UUID) (int64, error)
}
