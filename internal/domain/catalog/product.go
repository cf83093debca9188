package catalog

import (
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StrainType classifies a product's strain; empty means not applicable
type StrainType string

const (
	StrainIndica StrainType = "INDICA"
	StrainSativa StrainType = "SATIVA"
	StrainHybrid StrainType = "HYBRID"
	StrainCBD    StrainType = "CBD"
	StrainNone   StrainType = ""
)

// IsValid reports whether s is a known strain type or empty
func (s StrainType) IsValid() bool {
	switch s {
	case StrainIndica, StrainSativa, StrainHybrid, StrainCBD, StrainNone:
		return true
	}
	return false
}

// Product is a sellable item tracked in inventory
type Product struct {
	shared.TenantEntity
	Code           string          `gorm:"type:varchar(50);not null" json:"code"`
	Name           string          `gorm:"type:varchar(200);not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	VendorID       *uuid.UUID      `gorm:"type:uuid;index" json:"vendorId,omitempty"`
	Category       string          `gorm:"type:varchar(100);index" json:"category"`
	StrainType     StrainType      `gorm:"type:varchar(20)" json:"strainType"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"wholesalePrice"`
	RetailPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"retailPrice"`
	IsActive       bool            `gorm:"not null;index" json:"isActive"`
	Images         []ProductImage  `gorm:"foreignKey:ProductID" json:"images,omitempty"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// GetCode returns the tenant-unique product code
func (p *Product) GetCode() string {
	return p.Code
}

// ProductDetails holds the mutable attributes of a product
type ProductDetails struct {
	Name           string
	Description    string
	VendorID       *uuid.UUID
	Category       string
	StrainType     StrainType
	WholesalePrice decimal.Decimal
	RetailPrice    decimal.Decimal
	IsActive       bool
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, code string, details ProductDetails) (*Product, error) {
	code = shared.NormalizeCode(code)
	if err := shared.ValidateCode("Product", code); err != nil {
		return nil, err
	}
	p := &Product{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Code:         code,
	}
	if err := p.Apply(details); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply replaces the product's mutable attributes after validation
func (p *Product) Apply(d ProductDetails) error {
	name, err := shared.RequireName("Product", d.Name, 200)
	if err != nil {
		return err
	}
	strain := StrainType(strings.ToUpper(strings.TrimSpace(string(d.StrainType))))
	if !strain.IsValid() {
		return shared.InvalidInput("Strain type must be one of INDICA, SATIVA, HYBRID, CBD")
	}
	if d.WholesalePrice.IsNegative() || d.RetailPrice.IsNegative() {
		return shared.InvalidInput("Prices cannot be negative")
	}
	if d.VendorID != nil && *d.VendorID == uuid.Nil {
		d.VendorID = nil
	}
	p.Name = name
	p.Description = d.Description
	p.VendorID = d.VendorID
	p.Category = strings.TrimSpace(d.Category)
	p.StrainType = strain
	p.WholesalePrice = d.WholesalePrice
	p.RetailPrice = d.RetailPrice
	p.IsActive = d.IsActive
	p.Touch()
	return nil
}

// SetCode changes the product code
func (p *Product) SetCode(code string) error {
	code = shared.NormalizeCode(code)
	if err := shared.ValidateCode("Product", code); err != nil {
		return err
	}
	p.Code = code
	p.Touch()
	return nil
}

// Margin returns retail minus wholesale price
func (p *Product) Margin() decimal.Decimal {
	return p.RetailPrice.Sub(p.WholesalePrice)
}
