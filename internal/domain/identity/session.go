package identity

import (
	"github.com/google/uuid"
)

// Session is the resolved identity of an authenticated caller
type Session struct {
	UserID   uuid.UUID `json:"userId"`
	TenantID uuid.UUID `json:"tenantId"`
	Role     Role      `json:"role"`
	Email    string    `json:"email"`
	TokenID  string    `json:"-"`
}

// Can reports whether the session's role grants perm
func (s *Session) Can(perm Permission) bool {
	if s == nil {
		return false
	}
	return HasPermission(s.Role, perm)
}
