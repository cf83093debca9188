package telemetry

import (
	"context"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLowStockProvider implements LowStockProvider over the inventory
// ledger tables
type GormLowStockProvider struct {
	db        *gorm.DB
	threshold int64
}

// NewGormLowStockProvider creates a provider using the default low stock
// threshold
func NewGormLowStockProvider(db *gorm.DB) *GormLowStockProvider {
	return &GormLowStockProvider{db: db, threshold: inventory.DefaultLowStockThreshold}
}

// GetLowStockCount counts active products whose total stock, across all
// locations, is below the threshold. Products without any record count as
// zero stock.
func (p *GormLowStockProvider) GetLowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	stock := p.db.
		Table("inventory_records").
		Select("product_id, SUM(quantity) AS quantity").
		Where("tenant_id = ?", tenantID).
		Group("product_id")

	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Joins("LEFT JOIN (?) AS stock ON stock.product_id = products.id", stock).
		Where("products.tenant_id = ? AND products.is_active = ?", tenantID, true).
		Where("COALESCE(stock.quantity, 0) < ?", p.threshold).
		Count(&count).Error
	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all active tenant IDs.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("tenants").
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}
