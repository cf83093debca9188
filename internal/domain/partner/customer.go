package partner

import (
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a buyer that sales are recorded against
type Customer struct {
	shared.TenantEntity
	Code        string          `gorm:"type:varchar(50);not null" json:"code"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name"`
	Email       string          `gorm:"type:varchar(200);index" json:"email"`
	Phone       string          `gorm:"type:varchar(50)" json:"phone"`
	Address     string          `gorm:"type:text" json:"address"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"creditLimit"`
	IsActive    bool            `gorm:"not null;index" json:"isActive"`
	Notes       string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// GetCode returns the tenant-unique customer code
func (c *Customer) GetCode() string {
	return c.Code
}

// CustomerDetails holds the mutable attributes of a customer
type CustomerDetails struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	CreditLimit decimal.Decimal
	IsActive    bool
	Notes       string
}

// NewCustomer creates a new active customer
func NewCustomer(tenantID uuid.UUID, code string, details CustomerDetails) (*Customer, error) {
	code = shared.NormalizeCode(code)
	if err := shared.ValidateCode("Customer", code); err != nil {
		return nil, err
	}
	c := &Customer{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Code:         code,
	}
	if err := c.Apply(details); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply replaces the customer's mutable attributes after validation
func (c *Customer) Apply(d CustomerDetails) error {
	name, err := shared.RequireName("Customer", d.Name, 200)
	if err != nil {
		return err
	}
	if d.CreditLimit.IsNegative() {
		return shared.InvalidInput("Credit limit cannot be negative")
	}
	c.Name = name
	c.Email = strings.ToLower(strings.TrimSpace(d.Email))
	c.Phone = strings.TrimSpace(d.Phone)
	c.Address = strings.TrimSpace(d.Address)
	c.CreditLimit = d.CreditLimit
	c.IsActive = d.IsActive
	c.Notes = d.Notes
	c.Touch()
	return nil
}

// SetCode changes the customer code
func (c *Customer) SetCode(code string) error {
	code = shared.NormalizeCode(code)
	if err := shared.ValidateCode("Customer", code); err != nil {
		return err
	}
	c.Code = code
	c.Touch()
	return nil
}
