package report

import (
	"context"
	"sort"
	"time"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// topCustomerLimit caps the customer ranking
const topCustomerLimit = 10

// CustomerAnalyticsGenerator measures customer activity within a recency
// window ending now
type CustomerAnalyticsGenerator struct {
	source report.DataSource
	now    func() time.Time
}

// Generate implements Generator
func (g *CustomerAnalyticsGenerator) Generate(ctx context.Context, tenantID uuid.UUID, params map[string]string) (*report.Result, error) {
	days, err := intParam(params, "days", report.DefaultCustomerWindowDays, 1)
	if err != nil {
		return nil, err
	}
	now := g.now()
	since := now.AddDate(0, 0, -days)

	customers, err := g.source.Customers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sales, err := g.source.SalesInPeriod(ctx, tenantID, since, time.Time{})
	if err != nil {
		return nil, err
	}

	type activity struct {
		sales   int
		revenue decimal.Decimal
	}
	active := make(map[uuid.UUID]*activity)
	revenue := decimal.Zero
	for i := range sales {
		s := &sales[i]
		if !countable(s) {
			continue
		}
		a, ok := active[s.CustomerID]
		if !ok {
			a = &activity{revenue: decimal.Zero}
			active[s.CustomerID] = a
		}
		a.sales++
		a.revenue = a.revenue.Add(s.Total)
		revenue = revenue.Add(s.Total)
	}

	var newCustomers, activeCustomers int
	var ranked []report.Row
	for _, c := range customers {
		if !c.CreatedAt.Before(since) {
			newCustomers++
		}
		a, ok := active[c.ID]
		if !ok {
			continue
		}
		activeCustomers++
		ranked = append(ranked, report.Row{
			"key":        c.ID.String(),
			"label":      c.Name,
			"code":       c.Code,
			"salesCount": a.sales,
			"revenue":    money(a.revenue),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i]["revenue"].(decimal.Decimal), ranked[j]["revenue"].(decimal.Decimal)
		if !ri.Equal(rj) {
			return ri.GreaterThan(rj)
		}
		return ranked[i]["code"].(string) < ranked[j]["code"].(string)
	})
	if len(ranked) > topCustomerLimit {
		ranked = ranked[:topCustomerLimit]
	}

	result := report.NewResult(report.TypeCustomerAnalytics, "Customer Analytics", params,
		report.Column{Key: "label", Label: "Customer"},
		report.Column{Key: "salesCount", Label: "Sales"},
		report.Column{Key: "revenue", Label: "Revenue"},
	)
	result.Summary["windowDays"] = days
	result.Summary["totalCustomers"] = len(customers)
	result.Summary["activeCustomers"] = activeCustomers
	result.Summary["newCustomers"] = newCustomers
	result.Summary["inactiveCustomers"] = len(customers) - activeCustomers
	result.Summary["revenueInWindow"] = money(revenue)
	if ranked != nil {
		result.Groups = ranked
	}
	return result, nil
}

// VendorPerformanceGenerator attributes sold units and revenue to the vendor
// of each product
type VendorPerformanceGenerator struct {
	source report.DataSource
}

// Generate implements Generator
func (g *VendorPerformanceGenerator) Generate(ctx context.Context, tenantID uuid.UUID, params map[string]string) (*report.Result, error) {
	p, err := periodParam(params)
	if err != nil {
		return nil, err
	}
	vendors, err := g.source.Vendors(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	products, err := productIndex(ctx, g.source, tenantID)
	if err != nil {
		return nil, err
	}
	sales, err := g.source.SalesInPeriod(ctx, tenantID, p.from, p.to)
	if err != nil {
		return nil, err
	}

	type performance struct {
		products int
		units    int64
		revenue  decimal.Decimal
	}
	perVendor := make(map[uuid.UUID]*performance, len(vendors))
	for _, v := range vendors {
		perVendor[v.ID] = &performance{revenue: decimal.Zero}
	}
	for _, prod := range products {
		if prod.VendorID == nil {
			continue
		}
		if vp, ok := perVendor[*prod.VendorID]; ok {
			vp.products++
		}
	}

	var (
		totalUnits   int64
		totalRevenue = decimal.Zero
		unassigned   = decimal.Zero
	)
	for i := range sales {
		s := &sales[i]
		if !countable(s) {
			continue
		}
		for _, it := range s.Items {
			prod, ok := products[it.ProductID]
			var vp *performance
			if ok && prod.VendorID != nil {
				vp = perVendor[*prod.VendorID]
			}
			if vp == nil {
				unassigned = unassigned.Add(it.LineTotal)
				continue
			}
			vp.units += it.Quantity
			vp.revenue = vp.revenue.Add(it.LineTotal)
			totalUnits += it.Quantity
			totalRevenue = totalRevenue.Add(it.LineTotal)
		}
	}

	rows := make([]report.Row, 0, len(vendors))
	for _, v := range vendors {
		vp := perVendor[v.ID]
		rows = append(rows, report.Row{
			"key":          v.ID.String(),
			"label":        v.Name,
			"code":         v.Code,
			"productCount": vp.products,
			"unitsSold":    vp.units,
			"revenue":      money(vp.revenue),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i]["revenue"].(decimal.Decimal), rows[j]["revenue"].(decimal.Decimal)
		if !ri.Equal(rj) {
			return ri.GreaterThan(rj)
		}
		return rows[i]["code"].(string) < rows[j]["code"].(string)
	})

	result := report.NewResult(report.TypeVendorPerformance, "Vendor Performance", params,
		report.Column{Key: "label", Label: "Vendor"},
		report.Column{Key: "productCount", Label: "Products"},
		report.Column{Key: "unitsSold", Label: "Units sold"},
		report.Column{Key: "revenue", Label: "Revenue"},
	)
	result.Summary["totalVendors"] = len(vendors)
	result.Summary["totalUnitsSold"] = totalUnits
	result.Summary["totalRevenue"] = money(totalRevenue)
	result.Summary["unassignedRevenue"] = money(unassigned)
	result.Groups = rows
	return result, nil
}
