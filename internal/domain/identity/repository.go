package identity

import (
	"context"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantRepository persists tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, tenant *Tenant) error
}

// UserRepository persists users within a tenant
type UserRepository interface {
	shared.TenantCRUDRepository[User]

	// FindByEmail finds a user by email within a tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)

	// CountSalesCreatedBy counts the sales whose audit trail names the user
	CountSalesCreatedBy(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)

	// TouchLastLogin records a successful login
	TouchLastLogin(ctx context.Context, tenantID, userID uuid.UUID) error
}
