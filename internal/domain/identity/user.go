package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a person who can sign in to a tenant
type User struct {
	shared.TenantEntity
	Email        string     `gorm:"type:varchar(200);not null" json:"email"`
	Name         string     `gorm:"type:varchar(200);not null" json:"name"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user with a hashed password
func NewUser(tenantID uuid.UUID, email, name, password string, role Role) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("Name is required")
	}
	if !role.IsValid() {
		return nil, shared.InvalidInput("Role must be one of ADMIN, MANAGER, USER")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &User{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
	}, nil
}

// SetRole changes the user's role
func (u *User) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.InvalidInput("Role must be one of ADMIN, MANAGER, USER")
	}
	u.Role = role
	u.Touch()
	return nil
}

// SetEmail changes the user's email
func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	u.Touch()
	return nil
}

// ChangePassword replaces the stored password hash
func (u *User) ChangePassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword validates and hashes a plaintext password
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", shared.InvalidInput("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return "", shared.InvalidInput("Password cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.InvalidInput("Email is required")
	}
	if len(email) > 200 {
		return shared.InvalidInput("Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.InvalidInput("Invalid email format")
	}
	return nil
}
