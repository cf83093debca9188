package persistence

import (
	"context"

	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var productQuery = QuerySpec{
	Resource:      "Product",
	SearchColumns: []string{"code", "name", "category"},
	ExactColumns: map[string]string{
		"vendorId":   "vendor_id",
		"category":   "category",
		"strainType": "strain_type",
	},
	BoolColumns: map[string]string{"isActive": "is_active"},
	RangeColumns: map[string]string{
		"retailPrice":    "retail_price",
		"wholesalePrice": "wholesale_price",
	},
	SortColumns: map[string]string{
		"code":           "code",
		"name":           "name",
		"category":       "category",
		"retailPrice":    "retail_price",
		"wholesalePrice": "wholesale_price",
	},
	CodeColumn: "code",
	Preload:    []string{"Images"},
}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	*TenantScopedRepository[catalog.Product]
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{NewTenantScopedRepository[catalog.Product](db, productQuery)}
}

// CountInventoryRecords counts stock records that reference the product
func (r *GormProductRepository) CountInventoryRecords(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	return r.CountWhere(ctx, tenantID, &inventory.InventoryRecord{}, "product_id", productID)
}

// CountSaleItems counts sale lines that reference the product
func (r *GormProductRepository) CountSaleItems(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	return r.CountWhere(ctx, tenantID, &trade.SaleItem{}, "product_id", productID)
}

// FindByIDs loads several products of one tenant at once. Unknown ids are
// silently skipped; callers compare lengths when they need all of them.
func (r *GormProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	err := r.DB().WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

// GormProductImageRepository implements catalog.ProductImageRepository
type GormProductImageRepository struct {
	db *gorm.DB
}

// NewGormProductImageRepository creates a new GormProductImageRepository
func NewGormProductImageRepository(db *gorm.DB) *GormProductImageRepository {
	return &GormProductImageRepository{db: db}
}

// FindByProduct lists a product's images, primary first
func (r *GormProductImageRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.ProductImage, error) {
	var images []catalog.ProductImage
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("product_id = ?", productID).
		Order("is_primary DESC").
		Order("sort_order").
		Order("created_at").
		Find(&images).Error
	return images, err
}

// FindByIDForTenant loads one image of the tenant
func (r *GormProductImageRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ProductImage, error) {
	var image catalog.ProductImage
	if err := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, translate(err, "Product image", "")
	}
	return &image, nil
}

// Create inserts an image under tenantID
func (r *GormProductImageRepository) Create(ctx context.Context, tenantID uuid.UUID, image *catalog.ProductImage) error {
	if tenantID == uuid.Nil {
		return ErrTenantRequired
	}
	image.AssignTenant(tenantID)
	return translate(r.db.WithContext(ctx).Create(image).Error, "Product image", "")
}

// SaveAll persists the primary flag and sort order of images
func (r *GormProductImageRepository) SaveAll(ctx context.Context, tenantID uuid.UUID, images []catalog.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, img := range images {
			result := tx.Model(&catalog.ProductImage{}).
				Scopes(TenantScope(tenantID)).
				Where("id = ?", img.ID).
				Updates(map[string]any{
					"is_primary": img.IsPrimary,
					"sort_order": img.SortOrder,
					"updated_at": img.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.NotFound("Product image")
			}
		}
		return nil
	})
}

// DeleteForTenant removes one image record
func (r *GormProductImageRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).Where("id = ?", id).Delete(&catalog.ProductImage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Product image")
	}
	return nil
}

// Ensure interfaces are implemented
var (
	_ catalog.ProductRepository      = (*GormProductRepository)(nil)
	_ catalog.ProductImageRepository = (*GormProductImageRepository)(nil)
)
