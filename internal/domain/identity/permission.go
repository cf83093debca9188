package identity

import (
	"sort"
	"strings"
)

// Role is the coarse access level of a user within a tenant
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// ParseRole converts a case-insensitive role name into a Role
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// Permission is a named capability checked against a role
type Permission string

const (
	PermViewCustomers   Permission = "VIEW_CUSTOMERS"
	PermCreateCustomers Permission = "CREATE_CUSTOMERS"
	PermEditCustomers   Permission = "EDIT_CUSTOMERS"
	PermDeleteCustomers Permission = "DELETE_CUSTOMERS"

	PermViewVendors   Permission = "VIEW_VENDORS"
	PermCreateVendors Permission = "CREATE_VENDORS"
	PermEditVendors   Permission = "EDIT_VENDORS"
	PermDeleteVendors Permission = "DELETE_VENDORS"

	PermViewProducts   Permission = "VIEW_PRODUCTS"
	PermCreateProducts Permission = "CREATE_PRODUCTS"
	PermEditProducts   Permission = "EDIT_PRODUCTS"
	PermDeleteProducts Permission = "DELETE_PRODUCTS"

	PermViewLocations   Permission = "VIEW_LOCATIONS"
	PermCreateLocations Permission = "CREATE_LOCATIONS"
	PermEditLocations   Permission = "EDIT_LOCATIONS"
	PermDeleteLocations Permission = "DELETE_LOCATIONS"

	PermViewInventory     Permission = "VIEW_INVENTORY"
	PermManageInventory   Permission = "MANAGE_INVENTORY"
	PermTransferInventory Permission = "TRANSFER_INVENTORY"

	PermViewSales   Permission = "VIEW_SALES"
	PermCreateSales Permission = "CREATE_SALES"
	PermEditSales   Permission = "EDIT_SALES"
	PermDeleteSales Permission = "DELETE_SALES"

	PermViewPayments   Permission = "VIEW_PAYMENTS"
	PermManagePayments Permission = "MANAGE_PAYMENTS"

	PermViewReports    Permission = "VIEW_REPORTS"
	PermCreateReports  Permission = "CREATE_REPORTS"
	PermEditReports    Permission = "EDIT_REPORTS"
	PermDeleteReports  Permission = "DELETE_REPORTS"
	PermExecuteReports Permission = "EXECUTE_REPORTS"

	PermViewDashboards   Permission = "VIEW_DASHBOARDS"
	PermManageDashboards Permission = "MANAGE_DASHBOARDS"

	PermViewUsers      Permission = "VIEW_USERS"
	PermManageUsers    Permission = "MANAGE_USERS"
	PermManageSettings Permission = "MANAGE_SETTINGS"
)

var allPermissions = []Permission{
	PermViewCustomers, PermCreateCustomers, PermEditCustomers, PermDeleteCustomers,
	PermViewVendors, PermCreateVendors, PermEditVendors, PermDeleteVendors,
	PermViewProducts, PermCreateProducts, PermEditProducts, PermDeleteProducts,
	PermViewLocations, PermCreateLocations, PermEditLocations, PermDeleteLocations,
	PermViewInventory, PermManageInventory, PermTransferInventory,
	PermViewSales, PermCreateSales, PermEditSales, PermDeleteSales,
	PermViewPayments, PermManagePayments,
	PermViewReports, PermCreateReports, PermEditReports, PermDeleteReports, PermExecuteReports,
	PermViewDashboards, PermManageDashboards,
	PermViewUsers, PermManageUsers, PermManageSettings,
}

// permissionMatrix is the static role table. ADMIN is filled in init with
// every enumerated permission.
var permissionMatrix = map[Role]map[Permission]bool{
	RoleAdmin: {},
	RoleManager: {
		PermViewCustomers: true, PermCreateCustomers: true, PermEditCustomers: true, PermDeleteCustomers: true,
		PermViewVendors: true, PermCreateVendors: true, PermEditVendors: true, PermDeleteVendors: true,
		PermViewProducts: true, PermCreateProducts: true, PermEditProducts: true, PermDeleteProducts: true,
		PermViewLocations: true, PermCreateLocations: true, PermEditLocations: true, PermDeleteLocations: true,
		PermViewInventory: true, PermManageInventory: true, PermTransferInventory: true,
		PermViewSales: true, PermCreateSales: true, PermEditSales: true,
		PermViewPayments: true, PermManagePayments: true,
		PermViewReports: true, PermCreateReports: true, PermEditReports: true, PermDeleteReports: true,
		PermExecuteReports: true,
		PermViewDashboards: true, PermManageDashboards: true,
		PermViewUsers: true,
	},
	RoleUser: {
		PermViewCustomers:   true,
		PermCreateCustomers: true,
		PermViewVendors:     true,
		PermViewProducts:    true,
		PermViewLocations:   true,
		PermViewInventory:   true,
		PermViewSales:       true,
		PermCreateSales:     true,
		PermViewPayments:    true,
		PermViewReports:     true,
		PermExecuteReports:  true,
		PermViewDashboards:  true,
	},
}

func init() {
	for _, p := range allPermissions {
		permissionMatrix[RoleAdmin][p] = true
	}
}

// HasPermission reports whether role grants perm. Unknown roles and
// permissions are denied.
func HasPermission(role Role, perm Permission) bool {
	perms, ok := permissionMatrix[role]
	if !ok {
		return false
	}
	return perms[perm]
}

// AllPermissions returns every enumerated permission
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// PermissionsFor returns the sorted permission set of role
func PermissionsFor(role Role) []Permission {
	perms := permissionMatrix[role]
	out := make([]Permission, 0, len(perms))
	for p, granted := range perms {
		if granted {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
