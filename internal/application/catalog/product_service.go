package catalog

import (
	"context"

	"github.com/bizledger/backend/internal/application/uow"
	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	vendorRepo  partner.VendorRepository
	scope       uow.TransactionScope
	storage     ImageStorage
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. storage may be nil when
// object storage is disabled; image objects are then left untouched.
func NewProductService(
	productRepo catalog.ProductRepository,
	vendorRepo partner.VendorRepository,
	scope uow.TransactionScope,
	storage ImageStorage,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		vendorRepo:  vendorRepo,
		scope:       scope,
		storage:     storage,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.ensureVendor(ctx, tenantID, req.VendorID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(tenantID, req.Code, catalog.ProductDetails{
		Name:           req.Name,
		Description:    req.Description,
		VendorID:       req.VendorID,
		Category:       req.Category,
		StrainType:     catalog.StrainType(req.StrainType),
		WholesalePrice: decimalOr(req.WholesalePrice, decimal.Zero),
		RetailPrice:    decimalOr(req.RetailPrice, decimal.Zero),
		IsActive:       boolOr(req.IsActive, true),
	})
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, tenantID, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product with its images
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[ProductResponse], error) {
	page, err := s.productRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.MapPaginated(page, func(p catalog.Product) ProductResponse {
		return ToProductResponse(&p)
	}), nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	vendorID := product.VendorID
	switch {
	case req.ClearVendor:
		vendorID = nil
	case req.VendorID != nil:
		if err := s.ensureVendor(ctx, tenantID, req.VendorID); err != nil {
			return nil, err
		}
		vendorID = req.VendorID
	}

	if req.Code != nil {
		if err := product.SetCode(*req.Code); err != nil {
			return nil, err
		}
	}
	strain := product.StrainType
	if req.StrainType != nil {
		strain = catalog.StrainType(*req.StrainType)
	}
	err = product.Apply(catalog.ProductDetails{
		Name:           stringOr(req.Name, product.Name),
		Description:    stringOr(req.Description, product.Description),
		VendorID:       vendorID,
		Category:       stringOr(req.Category, product.Category),
		StrainType:     strain,
		WholesalePrice: decimalOr(req.WholesalePrice, product.WholesalePrice),
		RetailPrice:    decimalOr(req.RetailPrice, product.RetailPrice),
		IsActive:       boolOr(req.IsActive, product.IsActive),
	})
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, tenantID, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product that is neither stocked nor sold. Its image
// records go with it; stored objects are removed after the commit.
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return err
	}

	inventoryCount, err := s.productRepo.CountInventoryRecords(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	saleItemsCount, err := s.productRepo.CountSaleItems(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if inventoryCount > 0 || saleItemsCount > 0 {
		return shared.InUse("Product", map[string]any{
			"inventoryCount": inventoryCount,
			"saleItemsCount": saleItemsCount,
		})
	}

	var keys []string
	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		images, err := repos.ProductImages().FindByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		for _, img := range images {
			if err := repos.ProductImages().DeleteForTenant(ctx, tenantID, img.ID); err != nil {
				return err
			}
			keys = append(keys, img.StorageKey)
		}
		return repos.Products().DeleteForTenant(ctx, tenantID, productID)
	})
	if err != nil {
		return err
	}

	s.removeObjects(ctx, keys)
	return nil
}

func (s *ProductService) ensureVendor(ctx context.Context, tenantID uuid.UUID, vendorID *uuid.UUID) error {
	if vendorID == nil || *vendorID == uuid.Nil {
		return nil
	}
	if _, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, *vendorID); err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			return shared.InvalidInput("Vendor does not exist").
				WithDetails(map[string]any{"vendorId": vendorID.String()})
		}
		return err
	}
	return nil
}

func (s *ProductService) removeObjects(ctx context.Context, keys []string) {
	if s.storage == nil {
		return
	}
	for _, key := range keys {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove product image object",
				zap.String("storage_key", key),
				zap.Error(err),
			)
		}
	}
}
