package identity

import (
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterRequest creates a tenant together with its first administrator
type RegisterRequest struct {
	TenantName string `json:"tenantName" binding:"required,max=200"`
	Email      string `json:"email" binding:"required,email,max=200"`
	Name       string `json:"name" binding:"required,max=200"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest identifies the tenant by slug and the user by email
type LoginRequest struct {
	TenantSlug string `json:"tenantSlug" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,max=200"`
	Password   string `json:"password" binding:"required"`
}

// CreateUserRequest represents a request to add a user to the tenant
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Name     string `json:"name" binding:"required,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER USER"`
}

// UpdateUserRequest represents a partial user update
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
	Name     *string `json:"name" binding:"omitempty,max=200"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER USER"`
	IsActive *bool   `json:"isActive"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToTenantResponse converts a domain Tenant to TenantResponse
func ToTenantResponse(t *identity.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
	}
}

// UserResponse represents a user in API responses. The password hash never
// leaves the service.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenantId"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	AccessToken string         `json:"accessToken"`
	TokenType   string         `json:"tokenType"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	User        UserResponse   `json:"user"`
	Tenant      TenantResponse `json:"tenant"`
}

// MeResponse describes the current session
type MeResponse struct {
	User        UserResponse   `json:"user"`
	Tenant      TenantResponse `json:"tenant"`
	Permissions []string       `json:"permissions"`
}

func permissionNames(role identity.Role) []string {
	perms := identity.PermissionsFor(role)
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
