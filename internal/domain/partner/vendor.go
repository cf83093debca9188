package partner

import (
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Vendor supplies products to the tenant
type Vendor struct {
	shared.TenantEntity
	Code        string `gorm:"type:varchar(50);not null" json:"code"`
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	ContactName string `gorm:"type:varchar(200)" json:"contactName"`
	Email       string `gorm:"type:varchar(200)" json:"email"`
	Phone       string `gorm:"type:varchar(50)" json:"phone"`
	Address     string `gorm:"type:text" json:"address"`
	IsActive    bool   `gorm:"not null;index" json:"isActive"`
	Notes       string `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// GetCode returns the tenant-unique vendor code
func (v *Vendor) GetCode() string {
	return v.Code
}

// VendorDetails holds the mutable attributes of a vendor
type VendorDetails struct {
	Name        string
	ContactName string
	Email       string
	Phone       string
	Address     string
	IsActive    bool
	Notes       string
}

// NewVendor creates a new vendor
func NewVendor(tenantID uuid.UUID, code string, details VendorDetails) (*Vendor, error) {
	code = shared.NormalizeCode(code)
	if err := shared.ValidateCode("Vendor", code); err != nil {
		return nil, err
	}
	v := &Vendor{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Code:         code,
	}
	if err := v.Apply(details); err != nil {
		return nil, err
	}
	return v, nil
}

// Apply replaces the vendor's mutable attributes after validation
func (v *Vendor) Apply(d VendorDetails) error {
	name, err := shared.RequireName("Vendor", d.Name, 200)
	if err != nil {
		return err
	}
	v.Name = name
	v.ContactName = strings.TrimSpace(d.ContactName)
	v.Email = strings.ToLower(strings.TrimSpace(d.Email))
	v.Phone = strings.TrimSpace(d.Phone)
	v.Address = strings.TrimSpace(d.Address)
	v.IsActive = d.IsActive
	v.Notes = d.Notes
	v.Touch()
	return nil
}

// SetCode changes the vendor code
func (v *Vendor) SetCode(code string) error {
	code = shared.NormalizeCode(code)
	if err := shared.ValidateCode("Vendor", code); err != nil {
		return err
	}
	v.Code = code
	v.Touch()
	return nil
}
