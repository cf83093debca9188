package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	t.Run("admin holds every permission", func(t *testing.T) {
		for _, p := range AllPermissions() {
			assert.True(t, HasPermission(RoleAdmin, p), p)
		}
	})

	t.Run("manager cannot manage users or delete sales", func(t *testing.T) {
		assert.True(t, HasPermission(RoleManager, PermDeleteCustomers))
		assert.True(t, HasPermission(RoleManager, PermTransferInventory))
		assert.False(t, HasPermission(RoleManager, PermManageUsers))
		assert.False(t, HasPermission(RoleManager, PermManageSettings))
		assert.False(t, HasPermission(RoleManager, PermDeleteSales))
	})

	t.Run("user gets a read-mostly subset", func(t *testing.T) {
		assert.True(t, HasPermission(RoleUser, PermViewCustomers))
		assert.True(t, HasPermission(RoleUser, PermCreateSales))
		assert.True(t, HasPermission(RoleUser, PermExecuteReports))
		assert.False(t, HasPermission(RoleUser, PermDeleteCustomers))
		assert.False(t, HasPermission(RoleUser, PermManageInventory))
		assert.False(t, HasPermission(RoleUser, PermViewUsers))
	})

	t.Run("unknown role or permission is denied", func(t *testing.T) {
		assert.False(t, HasPermission(Role("OWNER"), PermViewCustomers))
		assert.False(t, HasPermission(RoleAdmin, Permission("LAUNCH_ROCKETS")))
		assert.False(t, HasPermission("", ""))
	})
}

func TestPermissionsFor(t *testing.T) {
	perms := PermissionsFor(RoleUser)
	assert.NotEmpty(t, perms)
	for i := 1; i < len(perms); i++ {
		assert.Less(t, string(perms[i-1]), string(perms[i]))
	}

	// returned slice is a copy
	perms[0] = "MUTATED"
	assert.NotContains(t, PermissionsFor(RoleUser), Permission("MUTATED"))

	assert.Empty(t, PermissionsFor(Role("nobody")))
	assert.Len(t, PermissionsFor(RoleAdmin), len(AllPermissions()))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" manager ")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}

func TestSessionCan(t *testing.T) {
	var s *Session
	assert.False(t, s.Can(PermViewCustomers))

	s = &Session{Role: RoleUser}
	assert.True(t, s.Can(PermViewCustomers))
	assert.False(t, s.Can(PermEditCustomers))
}
