package identity

import (
	"regexp"
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Tenant is an isolated customer organization and the root of data isolation
type Tenant struct {
	shared.BaseEntity
	Name     string `gorm:"type:varchar(200);not null" json:"name"`
	Slug     string `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	Settings string `gorm:"type:text;not null" json:"settings"`
	IsActive bool   `gorm:"not null" json:"isActive"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates an active tenant with a slug derived from its name
func NewTenant(name string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("Tenant name is required")
	}
	if len(name) > 200 {
		return nil, shared.InvalidInput("Tenant name cannot exceed 200 characters")
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, shared.InvalidInput("Tenant name must contain letters or digits")
	}
	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Slug:       slug,
		Settings:   "{}",
		IsActive:   true,
	}, nil
}

// Slugify lowercases s and collapses every non-alphanumeric run into a dash
func Slugify(s string) string {
	s = slugInvalidChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
