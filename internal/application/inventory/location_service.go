package inventory

import (
	"context"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LocationService handles storage location operations
type LocationService struct {
	locationRepo inventory.LocationRepository
}

// NewLocationService creates a new LocationService
func NewLocationService(locationRepo inventory.LocationRepository) *LocationService {
	return &LocationService{locationRepo: locationRepo}
}

// Create creates a new location
func (s *LocationService) Create(ctx context.Context, tenantID uuid.UUID, req CreateLocationRequest) (*LocationResponse, error) {
	location, err := inventory.NewLocation(tenantID, req.Code, inventory.LocationDetails{
		Name:     req.Name,
		Address:  req.Address,
		IsActive: boolOr(req.IsActive, true),
	})
	if err != nil {
		return nil, err
	}
	if err := s.locationRepo.Create(ctx, tenantID, location); err != nil {
		return nil, err
	}

	response := ToLocationResponse(location)
	return &response, nil
}

// GetByID retrieves a location by ID
func (s *LocationService) GetByID(ctx context.Context, tenantID, locationID uuid.UUID) (*LocationResponse, error) {
	location, err := s.locationRepo.FindByIDForTenant(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	response := ToLocationResponse(location)
	return &response, nil
}

// List retrieves a page of locations
func (s *LocationService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[LocationResponse], error) {
	page, err := s.locationRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[LocationResponse]{}, err
	}
	return shared.MapPaginated(page, func(l inventory.Location) LocationResponse {
		return ToLocationResponse(&l)
	}), nil
}

// Update updates a location
func (s *LocationService) Update(ctx context.Context, tenantID, locationID uuid.UUID, req UpdateLocationRequest) (*LocationResponse, error) {
	location, err := s.locationRepo.FindByIDForTenant(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	if req.Code != nil {
		if err := location.SetCode(*req.Code); err != nil {
			return nil, err
		}
	}
	err = location.Apply(inventory.LocationDetails{
		Name:     stringOr(req.Name, location.Name),
		Address:  stringOr(req.Address, location.Address),
		IsActive: boolOr(req.IsActive, location.IsActive),
	})
	if err != nil {
		return nil, err
	}
	if err := s.locationRepo.Update(ctx, tenantID, location); err != nil {
		return nil, err
	}

	response := ToLocationResponse(location)
	return &response, nil
}

// Delete deletes a location that holds no stock
func (s *LocationService) Delete(ctx context.Context, tenantID, locationID uuid.UUID) error {
	if _, err := s.locationRepo.FindByIDForTenant(ctx, tenantID, locationID); err != nil {
		return err
	}
	count, err := s.locationRepo.CountInventoryRecords(ctx, tenantID, locationID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.InUse("Location", map[string]any{"inventoryCount": count})
	}
	return s.locationRepo.DeleteForTenant(ctx, tenantID, locationID)
}
