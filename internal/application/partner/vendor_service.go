package partner

import (
	"context"

	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VendorService handles vendor-related business operations
type VendorService struct {
	vendorRepo partner.VendorRepository
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo partner.VendorRepository) *VendorService {
	return &VendorService{vendorRepo: vendorRepo}
}

// Create creates a new vendor
func (s *VendorService) Create(ctx context.Context, tenantID uuid.UUID, req CreateVendorRequest) (*VendorResponse, error) {
	vendor, err := partner.NewVendor(tenantID, req.Code, partner.VendorDetails{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		IsActive:    boolOr(req.IsActive, true),
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.vendorRepo.Create(ctx, tenantID, vendor); err != nil {
		return nil, err
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// GetByID retrieves a vendor by ID
func (s *VendorService) GetByID(ctx context.Context, tenantID, vendorID uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, vendorID)
	if err != nil {
		return nil, err
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// List retrieves a page of vendors
func (s *VendorService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[VendorResponse], error) {
	page, err := s.vendorRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[VendorResponse]{}, err
	}
	return shared.MapPaginated(page, func(v partner.Vendor) VendorResponse {
		return ToVendorResponse(&v)
	}), nil
}

// Update updates a vendor
func (s *VendorService) Update(ctx context.Context, tenantID, vendorID uuid.UUID, req UpdateVendorRequest) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, vendorID)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		if err := vendor.SetCode(*req.Code); err != nil {
			return nil, err
		}
	}
	err = vendor.Apply(partner.VendorDetails{
		Name:        stringOr(req.Name, vendor.Name),
		ContactName: stringOr(req.ContactName, vendor.ContactName),
		Email:       stringOr(req.Email, vendor.Email),
		Phone:       stringOr(req.Phone, vendor.Phone),
		Address:     stringOr(req.Address, vendor.Address),
		IsActive:    boolOr(req.IsActive, vendor.IsActive),
		Notes:       stringOr(req.Notes, vendor.Notes),
	})
	if err != nil {
		return nil, err
	}

	if err := s.vendorRepo.Update(ctx, tenantID, vendor); err != nil {
		return nil, err
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// Delete deletes a vendor that supplies no products
func (s *VendorService) Delete(ctx context.Context, tenantID, vendorID uuid.UUID) error {
	if _, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, vendorID); err != nil {
		return err
	}

	productsCount, err := s.vendorRepo.CountProducts(ctx, tenantID, vendorID)
	if err != nil {
		return err
	}
	if productsCount > 0 {
		return shared.InUse("Vendor", map[string]any{"productsCount": productsCount})
	}

	return s.vendorRepo.DeleteForTenant(ctx, tenantID, vendorID)
}
