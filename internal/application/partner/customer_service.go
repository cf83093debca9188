package partner

import (
	"context"

	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	creditLimit := decimal.Zero
	if req.CreditLimit != nil {
		creditLimit = *req.CreditLimit
	}
	customer, err := partner.NewCustomer(tenantID, req.Code, partner.CustomerDetails{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		CreditLimit: creditLimit,
		IsActive:    boolOr(req.IsActive, true),
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, tenantID, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[CustomerResponse], error) {
	page, err := s.customerRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	return shared.MapPaginated(page, func(c partner.Customer) CustomerResponse {
		return ToCustomerResponse(&c)
	}), nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		if err := customer.SetCode(*req.Code); err != nil {
			return nil, err
		}
	}
	creditLimit := customer.CreditLimit
	if req.CreditLimit != nil {
		creditLimit = *req.CreditLimit
	}
	err = customer.Apply(partner.CustomerDetails{
		Name:        stringOr(req.Name, customer.Name),
		Email:       stringOr(req.Email, customer.Email),
		Phone:       stringOr(req.Phone, customer.Phone),
		Address:     stringOr(req.Address, customer.Address),
		CreditLimit: creditLimit,
		IsActive:    boolOr(req.IsActive, customer.IsActive),
		Notes:       stringOr(req.Notes, customer.Notes),
	})
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Update(ctx, tenantID, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer that has no sales recorded against it
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return err
	}

	salesCount, err := s.customerRepo.CountSales(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if salesCount > 0 {
		return shared.InUse("Customer", map[string]any{"salesCount": salesCount})
	}

	return s.customerRepo.DeleteForTenant(ctx, tenantID, customerID)
}
