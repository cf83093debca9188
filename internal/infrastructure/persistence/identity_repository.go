package persistence

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var userQuery = QuerySpec{
	Resource:      "User",
	SearchColumns: []string{"email", "name"},
	ExactColumns:  map[string]string{"role": "role"},
	BoolColumns:   map[string]string{"isActive": "is_active"},
	SortColumns: map[string]string{
		"email":       "email",
		"name":        "name",
		"role":        "role",
		"lastLoginAt": "last_login_at",
	},
}

// GormTenantRepository implements identity.TenantRepository using GORM.
// Tenants are the root of isolation and are not themselves tenant scoped.
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, translate(err, "Tenant", "")
	}
	return &tenant, nil
}

// FindBySlug finds a tenant by its slug
func (r *GormTenantRepository) FindBySlug(ctx context.Context, slug string) (*identity.Tenant, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, translate(err, "Tenant", "")
	}
	return &tenant, nil
}

// ExistsBySlug checks if a tenant with the given slug exists
func (r *GormTenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&identity.Tenant{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a tenant
func (r *GormTenantRepository) Create(ctx context.Context, tenant *identity.Tenant) error {
	err := r.db.WithContext(ctx).Create(tenant).Error
	if Classify(err) == KindUniqueViolation {
		return shared.NewDomainError(shared.CodeDuplicateCode, "A tenant with this name already exists").
			WithDetails(map[string]any{"slug": tenant.Slug})
	}
	return err
}

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	*TenantScopedRepository[identity.User]
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{NewTenantScopedRepository[identity.User](db, userQuery)}
}

// Create inserts a user, rejecting an email already used in the tenant
func (r *GormUserRepository) Create(ctx context.Context, tenantID uuid.UUID, user *identity.User) error {
	if err := r.ensureEmailAvailable(ctx, tenantID, user.Email, uuid.Nil); err != nil {
		return err
	}
	return r.mapEmailConflict(r.TenantScopedRepository.Create(ctx, tenantID, user), user.Email)
}

// Update saves a user, rejecting an email already used by someone else
func (r *GormUserRepository) Update(ctx context.Context, tenantID uuid.UUID, user *identity.User) error {
	if err := r.ensureEmailAvailable(ctx, tenantID, user.Email, user.ID); err != nil {
		return err
	}
	return r.mapEmailConflict(r.TenantScopedRepository.Update(ctx, tenantID, user), user.Email)
}

// FindByEmail finds a user by email within a tenant
func (r *GormUserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*identity.User, error) {
	var user identity.User
	err := r.DB().WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("email = ?", identity.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "User", "")
	}
	return &user, nil
}

// CountSalesCreatedBy counts the sales whose audit trail names the user
func (r *GormUserRepository) CountSalesCreatedBy(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	return r.CountWhere(ctx, tenantID, &trade.Sale{}, "created_by", userID)
}

// TouchLastLogin records a successful login
func (r *GormUserRepository) TouchLastLogin(ctx context.Context, tenantID, userID uuid.UUID) error {
	now := time.Now()
	return r.DB().WithContext(ctx).
		Model(&identity.User{}).
		Scopes(TenantScope(tenantID)).
		Where("id = ?", userID).
		UpdateColumn("last_login_at", now).Error
}

func (r *GormUserRepository) ensureEmailAvailable(ctx context.Context, tenantID uuid.UUID, email string, excludeID uuid.UUID) error {
	q := r.DB().WithContext(ctx).Model(&identity.User{}).Scopes(TenantScope(tenantID)).Where("email = ?", email)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return emailTaken(email)
	}
	return nil
}

func (r *GormUserRepository) mapEmailConflict(err error, email string) error {
	if shared.IsCode(err, shared.CodeDuplicateCode) {
		return emailTaken(email)
	}
	return err
}

func emailTaken(email string) error {
	return shared.NewDomainError(shared.CodeDuplicateCode, "A user with this email already exists").
		WithDetails(map[string]any{"email": email})
}

// Ensure interfaces are implemented
var (
	_ identity.TenantRepository = (*GormTenantRepository)(nil)
	_ identity.UserRepository   = (*GormUserRepository)(nil)
)
