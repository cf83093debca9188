package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Generator produces the result of one report type from resolved parameters
type Generator interface {
	Generate(ctx context.Context, tenantID uuid.UUID, params map[string]string) (*report.Result, error)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, tenantID uuid.UUID, params map[string]string) (*report.Result, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, tenantID uuid.UUID, params map[string]string) (*report.Result, error) {
	return f(ctx, tenantID, params)
}

// DefaultGenerators returns the built-in generator for every report type
func DefaultGenerators(source report.DataSource) map[report.ReportType]Generator {
	return map[report.ReportType]Generator{
		report.TypeSalesSummary:      &SalesSummaryGenerator{source: source},
		report.TypeInventorySummary:  &InventorySummaryGenerator{source: source},
		report.TypeCustomerAnalytics: &CustomerAnalyticsGenerator{source: source, now: time.Now},
		report.TypeVendorPerformance: &VendorPerformanceGenerator{source: source},
		report.TypeFinancialSummary:  &FinancialSummaryGenerator{source: source},
	}
}

// period is a half-open [from, to) range; zero bounds are open
type period struct {
	from time.Time
	to   time.Time
}

func (p period) contains(t time.Time) bool {
	if !p.from.IsZero() && t.Before(p.from) {
		return false
	}
	if !p.to.IsZero() && !t.Before(p.to) {
		return false
	}
	return true
}

// periodParam reads startDate and endDate. Both dates are inclusive.
func periodParam(params map[string]string) (period, error) {
	var p period
	from, ok, err := dateParam(params, "startDate")
	if err != nil {
		return p, err
	}
	if ok {
		p.from = from
	}
	to, ok, err := dateParam(params, "endDate")
	if err != nil {
		return p, err
	}
	if ok {
		p.to = to.AddDate(0, 0, 1)
	}
	if !p.from.IsZero() && !p.to.IsZero() && !p.from.Before(p.to) {
		return p, shared.InvalidInput("startDate must not be after endDate")
	}
	return p, nil
}

func dateParam(params map[string]string, name string) (time.Time, bool, error) {
	v := strings.TrimSpace(params[name])
	if v == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(report.DateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, false, shared.InvalidInput(fmt.Sprintf("Parameter '%s' must be a date in YYYY-MM-DD format", name))
	}
	return t, true, nil
}

func intParam(params map[string]string, name string, def, min int) (int, error) {
	v := strings.TrimSpace(params[name])
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, shared.InvalidInput(fmt.Sprintf("Parameter '%s' must be a whole number of at least %d", name, min))
	}
	return n, nil
}

func uuidParam(params map[string]string, name string) (*uuid.UUID, error) {
	v := strings.TrimSpace(params[name])
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, shared.InvalidInput(fmt.Sprintf("Parameter '%s' must be a valid id", name))
	}
	return &id, nil
}

// countable reports whether a sale counts towards revenue
func countable(s *trade.Sale) bool {
	return s.Status != trade.SaleStatusCancelled
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return money(total.Div(decimal.NewFromInt(int64(n))))
}

func categoryOf(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Uncategorized"
	}
	return name
}
