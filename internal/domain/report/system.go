package report

import (
	"strconv"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Group-by options of the sales summary
const (
	GroupByDay      = "day"
	GroupByWeek     = "week"
	GroupByMonth    = "month"
	GroupByCustomer = "customer"
	GroupByProduct  = "product"
	GroupByCategory = "category"
)

// SalesGroupings lists the accepted groupBy values
var SalesGroupings = []string{GroupByDay, GroupByWeek, GroupByMonth, GroupByCustomer, GroupByProduct, GroupByCategory}

// DefaultCustomerWindowDays is the default recency window of customer analytics
const DefaultCustomerWindowDays = 30

var systemCatalog = []DefinitionDetails{
	{
		Name:        "Sales Summary",
		Description: "Revenue, quantity and sale counts over a period",
		ReportType:  TypeSalesSummary,
		Parameters: []Parameter{
			{Name: "startDate", Label: "Start date", Type: ParamDate, IsRequired: true},
			{Name: "endDate", Label: "End date", Type: ParamDate, IsRequired: true},
			{Name: "groupBy", Label: "Group by", Type: ParamSelect, DefaultValue: GroupByDay, Options: SalesGroupings},
		},
	},
	{
		Name:        "Inventory Summary",
		Description: "Stock value by category and products below the low stock threshold",
		ReportType:  TypeInventorySummary,
		Parameters: []Parameter{
			{Name: "locationId", Label: "Location", Type: ParamUUID},
			{Name: "threshold", Label: "Low stock threshold", Type: ParamNumber, DefaultValue: strconv.Itoa(inventory.DefaultLowStockThreshold)},
		},
	},
	{
		Name:        "Customer Analytics",
		Description: "Active, new and top customers within a recency window",
		ReportType:  TypeCustomerAnalytics,
		Parameters: []Parameter{
			{Name: "days", Label: "Window (days)", Type: ParamNumber, DefaultValue: strconv.Itoa(DefaultCustomerWindowDays)},
		},
	},
	{
		Name:        "Vendor Performance",
		Description: "Products, units sold and revenue per vendor",
		ReportType:  TypeVendorPerformance,
		Parameters: []Parameter{
			{Name: "startDate", Label: "Start date", Type: ParamDate},
			{Name: "endDate", Label: "End date", Type: ParamDate},
		},
	},
	{
		Name:        "Financial Summary",
		Description: "Revenue, collections and outstanding balances",
		ReportType:  TypeFinancialSummary,
		Parameters: []Parameter{
			{Name: "startDate", Label: "Start date", Type: ParamDate},
			{Name: "endDate", Label: "End date", Type: ParamDate},
		},
	},
}

// SystemDefinitions builds the read-only definitions every tenant starts with
func SystemDefinitions(tenantID uuid.UUID) []*Definition {
	defs := make([]*Definition, 0, len(systemCatalog))
	for _, d := range systemCatalog {
		params := make([]Parameter, len(d.Parameters))
		copy(params, d.Parameters)
		defs = append(defs, &Definition{
			TenantEntity:   shared.NewTenantEntity(tenantID),
			Name:           d.Name,
			Description:    d.Description,
			ReportType:     d.ReportType,
			Parameters:     params,
			IsSystemReport: true,
		})
	}
	return defs
}

// SystemDashboard builds the read-only overview dashboard, with one widget
// per given definition
func SystemDashboard(tenantID uuid.UUID, defs []*Definition) *Dashboard {
	d := &Dashboard{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		Name:              "Overview",
		Description:       "Key business figures",
		IsSystemDashboard: true,
		IsDefault:         true,
	}
	for i, def := range defs {
		id := def.ID
		wt := WidgetTable
		if def.ReportType == TypeSalesSummary {
			wt = WidgetChart
		}
		d.Widgets = append(d.Widgets, DashboardWidget{
			TenantEntity:       shared.NewTenantEntity(tenantID),
			DashboardID:        d.ID,
			WidgetType:         wt,
			Title:              def.Name,
			ReportDefinitionID: &id,
			Config:             map[string]any{},
			PositionX:          (i % 2) * 6,
			PositionY:          (i / 2) * 4,
			Width:              6,
			Height:             4,
			SortOrder:          i,
		})
	}
	return d
}
