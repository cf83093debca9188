package inventory

import (
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Location is a physical or storage unit that holds stock
type Location struct {
	shared.TenantEntity
	Code     string `gorm:"type:varchar(50);not null" json:"code"`
	Name     string `gorm:"type:varchar(200);not null" json:"name"`
	Address  string `gorm:"type:text" json:"address"`
	IsActive bool   `gorm:"not null;index" json:"isActive"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// GetCode returns the tenant-unique location code
func (l *Location) GetCode() string {
	return l.Code
}

// LocationDetails holds the mutable attributes of a location
type LocationDetails struct {
	Name     string
	Address  string
	IsActive bool
}

// NewLocation creates a new location
func NewLocation(tenantID uuid.UUID, code string, details LocationDetails) (*Location, error) {
	code = shared.NormalizeCode(code)
	if err := shared.ValidateCode("Location", code); err != nil {
		return nil, err
	}
	l := &Location{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Code:         code,
	}
	if err := l.Apply(details); err != nil {
		return nil, err
	}
	return l, nil
}

// Apply replaces the location's mutable attributes after validation
func (l *Location) Apply(d LocationDetails) error {
	name, err := shared.RequireName("Location", d.Name, 200)
	if err != nil {
		return err
	}
	l.Name = name
	l.Address = strings.TrimSpace(d.Address)
	l.IsActive = d.IsActive
	l.Touch()
	return nil
}

// SetCode changes the location code
func (l *Location) SetCode(code string) error {
	code = shared.NormalizeCode(code)
	if err := shared.ValidateCode("Location", code); err != nil {
		return err
	}
	l.Code = code
	l.Touch()
	return nil
}
