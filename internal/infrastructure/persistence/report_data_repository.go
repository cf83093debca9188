package persistence

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReportDataRepository implements report.DataSource on top of the
// entity repositories
type GormReportDataRepository struct {
	sales     *GormSaleRepository
	payments  *GormPaymentRepository
	products  *GormProductRepository
	customers *GormCustomerRepository
	vendors   *GormVendorRepository
	records   *GormInventoryRecordRepository
}

// NewGormReportDataRepository creates a new GormReportDataRepository
func NewGormReportDataRepository(db *gorm.DB) *GormReportDataRepository {
	return &GormReportDataRepository{
		sales:     NewGormSaleRepository(db),
		payments:  NewGormPaymentRepository(db),
		products:  NewGormProductRepository(db),
		customers: NewGormCustomerRepository(db),
		vendors:   NewGormVendorRepository(db),
		records:   NewGormInventoryRecordRepository(db),
	}
}

// SalesInPeriod returns sales with items dated in [from, to)
func (r *GormReportDataRepository) SalesInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]trade.Sale, error) {
	return r.sales.ListInPeriod(ctx, tenantID, from, to)
}

// PaymentsInPeriod returns payments made in [from, to)
func (r *GormReportDataRepository) PaymentsInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]trade.Payment, error) {
	return r.payments.ListInPeriod(ctx, tenantID, from, to)
}

// Products returns every product of the tenant
func (r *GormReportDataRepository) Products(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	return r.products.ListForTenant(ctx, tenantID)
}

// Customers returns every customer of the tenant
func (r *GormReportDataRepository) Customers(ctx context.Context, tenantID uuid.UUID) ([]partner.Customer, error) {
	return r.customers.ListForTenant(ctx, tenantID)
}

// Vendors returns every vendor of the tenant
func (r *GormReportDataRepository) Vendors(ctx context.Context, tenantID uuid.UUID) ([]partner.Vendor, error) {
	return r.vendors.ListForTenant(ctx, tenantID)
}

// InventoryRecords returns stock records, optionally at one location
func (r *GormReportDataRepository) InventoryRecords(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]inventory.InventoryRecord, error) {
	return r.records.ListForTenant(ctx, tenantID, locationID)
}

var _ report.DataSource = (*GormReportDataRepository)(nil)
