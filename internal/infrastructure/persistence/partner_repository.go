package persistence

import (
	"context"

	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var customerQuery = QuerySpec{
	Resource:      "Customer",
	SearchColumns: []string{"code", "name", "email", "phone"},
	BoolColumns:   map[string]string{"isActive": "is_active"},
	RangeColumns:  map[string]string{"creditLimit": "credit_limit"},
	SortColumns: map[string]string{
		"code":        "code",
		"name":        "name",
		"email":       "email",
		"creditLimit": "credit_limit",
	},
	CodeColumn: "code",
}

var vendorQuery = QuerySpec{
	Resource:      "Vendor",
	SearchColumns: []string{"code", "name", "contact_name", "email", "phone"},
	BoolColumns:   map[string]string{"isActive": "is_active"},
	SortColumns: map[string]string{
		"code":        "code",
		"name":        "name",
		"contactName": "contact_name",
	},
	CodeColumn: "code",
}

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	*TenantScopedRepository[partner.Customer]
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{NewTenantScopedRepository[partner.Customer](db, customerQuery)}
}

// CountSales counts the sales recorded against a customer
func (r *GormCustomerRepository) CountSales(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	return r.CountWhere(ctx, tenantID, &trade.Sale{}, "customer_id", customerID)
}

// GormVendorRepository implements partner.VendorRepository using GORM
type GormVendorRepository struct {
	*TenantScopedRepository[partner.Vendor]
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{NewTenantScopedRepository[partner.Vendor](db, vendorQuery)}
}

// CountProducts counts the products supplied by a vendor
func (r *GormVendorRepository) CountProducts(ctx context.Context, tenantID, vendorID uuid.UUID) (int64, error) {
	return r.CountWhere(ctx, tenantID, &catalog.Product{}, "vendor_id", vendorID)
}

// Ensure interfaces are implemented
var (
	_ partner.CustomerRepository = (*GormCustomerRepository)(nil)
	_ partner.VendorRepository   = (*GormVendorRepository)(nil)
)
