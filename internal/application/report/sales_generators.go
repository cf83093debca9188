package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var groupColumns = []report.Column{
	{Key: "label", Label: "Group"},
	{Key: "salesCount", Label: "Sales"},
	{Key: "quantity", Label: "Quantity"},
	{Key: "revenue", Label: "Revenue"},
}

// SalesSummaryGenerator totals sales over a period, grouped by time,
// customer, product or category
type SalesSummaryGenerator struct {
	source report.DataSource
}

type salesGroup struct {
	key      string
	label    string
	sales    map[uuid.UUID]bool
	quantity int64
	revenue  decimal.Decimal
}

// Generate implements Generator
func (g *SalesSummaryGenerator) Generate(ctx context.Context, tenantID uuid.UUID, params map[string]string) (*report.Result, error) {
	p, err := periodParam(params)
	if err != nil {
		return nil, err
	}
	groupBy := strings.ToLower(strings.TrimSpace(params["groupBy"]))
	if groupBy == "" {
		groupBy = report.GroupByDay
	}
	if !isGrouping(groupBy) {
		return nil, shared.InvalidInput("Parameter 'groupBy' must be one of " + strings.Join(report.SalesGroupings, ", "))
	}

	sales, err := g.source.SalesInPeriod(ctx, tenantID, p.from, p.to)
	if err != nil {
		return nil, err
	}

	var products map[uuid.UUID]*catalog.Product
	var customerNames map[uuid.UUID]string
	switch groupBy {
	case report.GroupByProduct, report.GroupByCategory:
		products, err = productIndex(ctx, g.source, tenantID)
	case report.GroupByCustomer:
		customerNames, err = customerIndex(ctx, g.source, tenantID)
	}
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*salesGroup)
	touch := func(key, label string) *salesGroup {
		grp, ok := groups[key]
		if !ok {
			grp = &salesGroup{key: key, label: label, sales: make(map[uuid.UUID]bool)}
			groups[key] = grp
		}
		return grp
	}

	var (
		count    int
		quantity int64
		revenue  = decimal.Zero
	)
	for i := range sales {
		s := &sales[i]
		if !countable(s) {
			continue
		}
		count++
		revenue = revenue.Add(s.Total)
		var saleQty int64
		for _, it := range s.Items {
			saleQty += it.Quantity
		}
		quantity += saleQty

		switch groupBy {
		case report.GroupByProduct, report.GroupByCategory:
			for _, it := range s.Items {
				key, label := it.ProductID.String(), "Unknown product"
				if prod, ok := products[it.ProductID]; ok {
					label = prod.Name
					if groupBy == report.GroupByCategory {
						key = categoryOf(prod.Category)
						label = key
					}
				} else if groupBy == report.GroupByCategory {
					key, label = categoryOf(""), categoryOf("")
				}
				grp := touch(key, label)
				grp.sales[s.ID] = true
				grp.quantity += it.Quantity
				grp.revenue = grp.revenue.Add(it.LineTotal)
			}
		default:
			key, label := saleGroupKey(groupBy, s, customerNames)
			grp := touch(key, label)
			grp.sales[s.ID] = true
			grp.quantity += saleQty
			grp.revenue = grp.revenue.Add(s.Total)
		}
	}

	result := report.NewResult(report.TypeSalesSummary, "Sales Summary", params, groupColumns...)
	result.Summary["totalSales"] = count
	result.Summary["totalRevenue"] = money(revenue)
	result.Summary["totalQuantity"] = quantity
	result.Summary["averageSale"] = average(revenue, count)
	result.Summary["groupBy"] = groupBy

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		grp := groups[k]
		result.Groups = append(result.Groups, report.Row{
			"key":        grp.key,
			"label":      grp.label,
			"salesCount": len(grp.sales),
			"quantity":   grp.quantity,
			"revenue":    money(grp.revenue),
		})
	}
	return result, nil
}

func isGrouping(s string) bool {
	for _, g := range report.SalesGroupings {
		if g == s {
			return true
		}
	}
	return false
}

func saleGroupKey(groupBy string, s *trade.Sale, customerNames map[uuid.UUID]string) (string, string) {
	d := s.SaleDate.UTC()
	switch groupBy {
	case report.GroupByWeek:
		year, week := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), fmt.Sprintf("Week %d, %d", week, year)
	case report.GroupByMonth:
		return d.Format("2006-01"), d.Format("January 2006")
	case report.GroupByCustomer:
		label, ok := customerNames[s.CustomerID]
		if !ok {
			label = "Unknown customer"
		}
		return s.CustomerID.String(), label
	default:
		return d.Format(report.DateLayout), d.Format("Jan 2, 2006")
	}
}

// FinancialSummaryGenerator reports revenue against collections for sales in
// a period
type FinancialSummaryGenerator struct {
	source report.DataSource
}

// Generate implements Generator
func (g *FinancialSummaryGenerator) Generate(ctx context.Context, tenantID uuid.UUID, params map[string]string) (*report.Result, error) {
	p, err := periodParam(params)
	if err != nil {
		return nil, err
	}
	sales, err := g.source.SalesInPeriod(ctx, tenantID, p.from, p.to)
	if err != nil {
		return nil, err
	}
	payments, err := g.source.PaymentsInPeriod(ctx, tenantID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	paidBySale := make(map[uuid.UUID]decimal.Decimal)
	received := decimal.Zero
	for _, pay := range payments {
		paidBySale[pay.SaleID] = paidBySale[pay.SaleID].Add(pay.Amount)
		if p.contains(pay.PaidAt) {
			received = received.Add(pay.Amount)
		}
	}

	type statusGroup struct {
		count  int
		amount decimal.Decimal
	}
	byStatus := map[trade.PaymentStatus]*statusGroup{
		trade.PaymentStatusPending: {amount: decimal.Zero},
		trade.PaymentStatusPartial: {amount: decimal.Zero},
		trade.PaymentStatusPaid:    {amount: decimal.Zero},
	}

	var (
		count       int
		revenue     = decimal.Zero
		collected   = decimal.Zero
		outstanding = decimal.Zero
	)
	for i := range sales {
		s := &sales[i]
		if !countable(s) {
			continue
		}
		count++
		revenue = revenue.Add(s.Total)
		paid := paidBySale[s.ID]
		collected = collected.Add(paid)
		if due := s.Total.Sub(paid); due.IsPositive() {
			outstanding = outstanding.Add(due)
		}
		if grp, ok := byStatus[s.PaymentStatus]; ok {
			grp.count++
			grp.amount = grp.amount.Add(s.Total)
		}
	}

	result := report.NewResult(report.TypeFinancialSummary, "Financial Summary", params,
		report.Column{Key: "label", Label: "Payment status"},
		report.Column{Key: "salesCount", Label: "Sales"},
		report.Column{Key: "amount", Label: "Amount"},
	)
	result.Summary["salesCount"] = count
	result.Summary["revenue"] = money(revenue)
	result.Summary["collected"] = money(collected)
	result.Summary["outstanding"] = money(outstanding)
	result.Summary["paymentsReceived"] = money(received)
	result.Summary["averageSale"] = average(revenue, count)

	for _, st := range []trade.PaymentStatus{trade.PaymentStatusPaid, trade.PaymentStatusPartial, trade.PaymentStatusPending} {
		grp := byStatus[st]
		result.Groups = append(result.Groups, report.Row{
			"key":        string(st),
			"label":      string(st),
			"salesCount": grp.count,
			"amount":     money(grp.amount),
		})
	}
	return result, nil
}

func productIndex(ctx context.Context, source report.DataSource, tenantID uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	products, err := source.Products(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func customerIndex(ctx context.Context, source report.DataSource, tenantID uuid.UUID) (map[uuid.UUID]string, error) {
	customers, err := source.Customers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(customers))
	for _, c := range customers {
		out[c.ID] = c.Name
	}
	return out, nil
}
