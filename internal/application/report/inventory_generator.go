package report

import (
	"context"
	"sort"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventorySummaryGenerator values current stock by category and lists
// products below the low stock threshold
type InventorySummaryGenerator struct {
	source report.DataSource
}

type categoryStock struct {
	records   int
	quantity  int64
	wholesale decimal.Decimal
	retail    decimal.Decimal
}

// Generate implements Generator. A product is low on stock when its total
// quantity, across the selected locations, is strictly below threshold.
// Active products without any stock count as quantity zero.
func (g *InventorySummaryGenerator) Generate(ctx context.Context, tenantID uuid.UUID, params map[string]string) (*report.Result, error) {
	locationID, err := uuidParam(params, "locationId")
	if err != nil {
		return nil, err
	}
	threshold, err := intParam(params, "threshold", inventory.DefaultLowStockThreshold, 0)
	if err != nil {
		return nil, err
	}

	records, err := g.source.InventoryRecords(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	products, err := productIndex(ctx, g.source, tenantID)
	if err != nil {
		return nil, err
	}

	perProduct := make(map[uuid.UUID]int64)
	categories := make(map[string]*categoryStock)
	var (
		totalQty  int64
		wholesale = decimal.Zero
		retail    = decimal.Zero
	)
	for _, r := range records {
		perProduct[r.ProductID] += r.Quantity
		totalQty += r.Quantity

		category := categoryOf("")
		w, rt := decimal.Zero, decimal.Zero
		if prod, ok := products[r.ProductID]; ok {
			category = categoryOf(prod.Category)
			qty := decimal.NewFromInt(r.Quantity)
			w = prod.WholesalePrice.Mul(qty)
			rt = prod.RetailPrice.Mul(qty)
		}
		wholesale = wholesale.Add(w)
		retail = retail.Add(rt)

		cs, ok := categories[category]
		if !ok {
			cs = &categoryStock{wholesale: decimal.Zero, retail: decimal.Zero}
			categories[category] = cs
		}
		cs.records++
		cs.quantity += r.Quantity
		cs.wholesale = cs.wholesale.Add(w)
		cs.retail = cs.retail.Add(rt)
	}

	var low []report.Row
	for id, prod := range products {
		qty, stocked := perProduct[id]
		if !stocked && !prod.IsActive {
			continue
		}
		if qty < int64(threshold) {
			low = append(low, report.Row{
				"productId": id.String(),
				"code":      prod.Code,
				"name":      prod.Name,
				"category":  categoryOf(prod.Category),
				"quantity":  qty,
				"threshold": threshold,
				"shortfall": int64(threshold) - qty,
			})
		}
	}
	sort.Slice(low, func(i, j int) bool {
		qi, qj := low[i]["quantity"].(int64), low[j]["quantity"].(int64)
		if qi != qj {
			return qi < qj
		}
		return low[i]["code"].(string) < low[j]["code"].(string)
	})

	result := report.NewResult(report.TypeInventorySummary, "Inventory Summary", params,
		report.Column{Key: "label", Label: "Category"},
		report.Column{Key: "records", Label: "Records"},
		report.Column{Key: "quantity", Label: "Quantity"},
		report.Column{Key: "wholesaleValue", Label: "Wholesale value"},
		report.Column{Key: "retailValue", Label: "Retail value"},
	)
	result.Summary["totalRecords"] = len(records)
	result.Summary["totalProducts"] = len(perProduct)
	result.Summary["totalQuantity"] = totalQty
	result.Summary["wholesaleValue"] = money(wholesale)
	result.Summary["retailValue"] = money(retail)
	result.Summary["lowStockCount"] = len(low)
	result.Summary["threshold"] = threshold

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cs := categories[name]
		result.Groups = append(result.Groups, report.Row{
			"key":            name,
			"label":          name,
			"records":        cs.records,
			"quantity":       cs.quantity,
			"wholesaleValue": money(cs.wholesale),
			"retailValue":    money(cs.retail),
		})
	}

	result.AddSection("lowStock", report.Section{
		Title: "Low stock",
		Columns: []report.Column{
			{Key: "code", Label: "Code"},
			{Key: "name", Label: "Product"},
			{Key: "category", Label: "Category"},
			{Key: "quantity", Label: "Quantity"},
			{Key: "shortfall", Label: "Shortfall"},
		},
		Rows: low,
	})
	return result, nil
}
