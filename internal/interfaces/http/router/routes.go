package router

import (
	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/interfaces/http/handler"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the API handlers mounted by APIGroups
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Customer  *handler.CustomerHandler
	Vendor    *handler.VendorHandler
	Product   *handler.ProductHandler
	Location  *handler.LocationHandler
	Inventory *handler.InventoryHandler
	Sale      *handler.SaleHandler
	Report    *handler.ReportHandler
	Dashboard *handler.DashboardHandler
}

// crudHandler is the shape shared by the plain resource handlers
type crudHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// crud mounts list, get, create, update and delete with one permission each
func crud(prefix string, gate *middleware.Gate, h crudHandler, view, create, edit, del identity.Permission) *DomainGroup {
	return NewDomainGroup(prefix).
		GET("", gate.Require(view), h.List).
		GET("/:id", gate.Require(view), h.Get).
		POST("", gate.Require(create), h.Create).
		PUT("/:id", gate.Require(edit), h.Update).
		DELETE("/:id", gate.Require(del), h.Delete)
}

// APIGroups builds the gated route groups of the API. Only register and
// login are reachable without a session.
func APIGroups(gate *middleware.Gate, h Handlers) []RouteRegistrar {
	auth := NewDomainGroup("/auth").
		POST("/register", nil, h.Auth.Register).
		POST("/login", nil, h.Auth.Login).
		POST("/logout", gate.RequireSession(), h.Auth.Logout).
		GET("/me", gate.RequireSession(), h.Auth.Me)

	users := NewDomainGroup("/users").
		GET("", gate.Require(identity.PermViewUsers), h.User.List).
		GET("/:id", gate.Require(identity.PermViewUsers), h.User.Get).
		POST("", gate.Require(identity.PermManageUsers), h.User.Create).
		PUT("/:id", gate.Require(identity.PermManageUsers), h.User.Update).
		DELETE("/:id", gate.Require(identity.PermManageUsers), h.User.Delete)

	customers := crud("/customers", gate, h.Customer,
		identity.PermViewCustomers, identity.PermCreateCustomers, identity.PermEditCustomers, identity.PermDeleteCustomers)
	vendors := crud("/vendors", gate, h.Vendor,
		identity.PermViewVendors, identity.PermCreateVendors, identity.PermEditVendors, identity.PermDeleteVendors)
	locations := crud("/locations", gate, h.Location,
		identity.PermViewLocations, identity.PermCreateLocations, identity.PermEditLocations, identity.PermDeleteLocations)

	products := crud("/products", gate, h.Product,
		identity.PermViewProducts, identity.PermCreateProducts, identity.PermEditProducts, identity.PermDeleteProducts).
		GET("/:id/images", gate.Require(identity.PermViewProducts), h.Product.ListImages).
		POST("/:id/images", gate.Require(identity.PermEditProducts), h.Product.CreateImage).
		PUT("/:id/images/:imageId/primary", gate.Require(identity.PermEditProducts), h.Product.SetPrimaryImage).
		DELETE("/:id/images/:imageId", gate.Require(identity.PermEditProducts), h.Product.DeleteImage)

	inventory := NewDomainGroup("/inventory").
		GET("", gate.Require(identity.PermViewInventory), h.Inventory.List).
		GET("/:id", gate.Require(identity.PermViewInventory), h.Inventory.Get).
		POST("/add", gate.Require(identity.PermManageInventory), h.Inventory.Add).
		POST("/remove", gate.Require(identity.PermManageInventory), h.Inventory.Remove).
		POST("/transfer", gate.Require(identity.PermTransferInventory), h.Inventory.Transfer)

	sales := crud("/sales", gate, h.Sale,
		identity.PermViewSales, identity.PermCreateSales, identity.PermEditSales, identity.PermDeleteSales).
		GET("/:id/payments", gate.Require(identity.PermViewPayments), h.Sale.ListPayments).
		POST("/:id/payments", gate.Require(identity.PermManagePayments), h.Sale.RecordPayment)

	reports := NewDomainGroup("/reports").
		GET("/definitions", gate.Require(identity.PermViewReports), h.Report.ListDefinitions).
		GET("/definitions/:id", gate.Require(identity.PermViewReports), h.Report.GetDefinition).
		POST("/definitions", gate.Require(identity.PermCreateReports), h.Report.CreateDefinition).
		PUT("/definitions/:id", gate.Require(identity.PermEditReports), h.Report.UpdateDefinition).
		DELETE("/definitions/:id", gate.Require(identity.PermDeleteReports), h.Report.DeleteDefinition).
		POST("/definitions/:id/execute", gate.Require(identity.PermExecuteReports), h.Report.Execute).
		GET("/definitions/:id/executions", gate.Require(identity.PermViewReports), h.Report.ListExecutions).
		GET("/executions/:id", gate.Require(identity.PermViewReports), h.Report.GetExecution).
		GET("/executions/:id/export", gate.Require(identity.PermViewReports), h.Report.ExportExecution)

	dashboards := crud("/dashboards", gate, h.Dashboard,
		identity.PermViewDashboards, identity.PermManageDashboards, identity.PermManageDashboards, identity.PermManageDashboards)

	return []RouteRegistrar{auth, users, customers, vendors, products, locations, inventory, sales, reports, dashboards}
}
