package persistence

import (
	"fmt"
	"strings"

	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&identity.Tenant{},
		&identity.User{},
		&partner.Customer{},
		&partner.Vendor{},
		&catalog.Product{},
		&catalog.ProductImage{},
		&inventory.Location{},
		&inventory.InventoryRecord{},
		&trade.Sale{},
		&trade.SaleItem{},
		&trade.Payment{},
		&trade.InvoiceSequence{},
		&report.Definition{},
		&report.Execution{},
		&report.Dashboard{},
		&report.DashboardWidget{},
	}
}

// uniqueIndex is a composite unique index that struct tags cannot express
// per tenant
type uniqueIndex struct {
	model   any
	name    string
	table   string
	columns []string
}

var tenantUniqueIndexes = []uniqueIndex{
	{&identity.User{}, "idx_users_tenant_email", "users", []string{"tenant_id", "email"}},
	{&partner.Customer{}, "idx_customers_tenant_code", "customers", []string{"tenant_id", "code"}},
	{&partner.Vendor{}, "idx_vendors_tenant_code", "vendors", []string{"tenant_id", "code"}},
	{&catalog.Product{}, "idx_products_tenant_code", "products", []string{"tenant_id", "code"}},
	{&inventory.Location{}, "idx_locations_tenant_code", "locations", []string{"tenant_id", "code"}},
	{&inventory.InventoryRecord{}, "idx_inventory_records_slot", "inventory_records", []string{"tenant_id", "product_id", "location_id", "batch_number"}},
	{&trade.Sale{}, "idx_sales_tenant_invoice", "sales", []string{"tenant_id", "invoice_number"}},
}

// AutoMigrate creates or updates every table and the per-tenant unique
// indexes. Production deployments on postgres use the SQL migrations
// instead; this path serves sqlite, mysql and tests.
func AutoMigrate(db *gorm.DB) error {
	if err := adaptColumnTypes(db); err != nil {
		return err
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	m := db.Migrator()
	for _, idx := range tenantUniqueIndexes {
		if m.HasIndex(idx.model, idx.name) {
			continue
		}
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// adaptColumnTypes maps the uuid column type onto char(36) for mysql, which
// has no native uuid type. Schemas are cached per gorm handle, so the change
// carries over to AutoMigrate.
func adaptColumnTypes(db *gorm.DB) error {
	if db.Dialector.Name() != "mysql" {
		return nil
	}
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse %T: %w", model, err)
		}
		for _, field := range stmt.Schema.Fields {
			if strings.EqualFold(string(field.DataType), "uuid") {
				field.DataType = "char(36)"
			}
		}
	}
	return nil
}
