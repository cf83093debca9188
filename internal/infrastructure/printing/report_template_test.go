package printing

import (
	"testing"
	"time"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *report.Result {
	r := report.NewResult(report.TypeInventorySummary, "Inventory Summary", map[string]string{"threshold": "10"},
		report.Column{Key: "label", Label: "Category"},
		report.Column{Key: "quantity", Label: "Quantity"},
		report.Column{Key: "retailValue", Label: "Retail value"},
	)
	r.GeneratedAt = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	r.Summary["totalQuantity"] = int64(12345)
	r.Summary["retailValue"] = decimal.RequireFromString("9876.5")
	r.Groups = append(r.Groups, report.Row{
		"label":       "Flower <indoor>",
		"quantity":    int64(1200),
		"retailValue": decimal.NewFromInt(2400),
	})
	r.AddSection("lowStock", report.Section{
		Title:   "Low stock",
		Columns: []report.Column{{Key: "code", Label: "Code"}},
	})
	return r
}

func TestReportTemplate_Render(t *testing.T) {
	tmpl := NewReportTemplate("en")
	out, err := tmpl.Render("Weekly stock", sampleResult())
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>Weekly stock</title>")
	assert.Contains(t, html, "Generated 2024-03-01 09:30 UTC")
	assert.Contains(t, html, "<td>Total Quantity</td>")
	assert.Contains(t, html, "12,345")
	assert.Contains(t, html, "9,876.50")
	assert.Contains(t, html, "2,400.00")
	assert.Contains(t, html, "Flower &lt;indoor&gt;", "cell values are escaped")
	assert.Contains(t, html, "<h2>Low stock</h2>")
	assert.Contains(t, html, "No data")
}

func TestReportTemplate_FallsBackToResultTitle(t *testing.T) {
	out, err := NewReportTemplate("").Render("", sampleResult())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1>Inventory Summary</h1>")
}

func TestReportTemplate_Locale(t *testing.T) {
	out, err := NewReportTemplate("de").Render("", sampleResult())
	require.NoError(t, err)
	assert.Contains(t, string(out), "9.876,50")
}

func TestReportTemplate_NilResult(t *testing.T) {
	_, err := NewReportTemplate("en").Render("x", nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestReportTemplate_Wide(t *testing.T) {
	tmpl := NewReportTemplate("en")
	r := sampleResult()
	assert.False(t, tmpl.Wide(r))

	for i := 0; i < wideTableColumns; i++ {
		r.Columns = append(r.Columns, report.Column{Key: "extra", Label: "Extra"})
	}
	assert.True(t, tmpl.Wide(r))
}

func TestHumanize(t *testing.T) {
	tmpl := NewReportTemplate("en")
	assert.Equal(t, "Total Revenue", tmpl.humanize("totalRevenue"))
	assert.Equal(t, "Low Stock Count", tmpl.humanize("lowStockCount"))
	assert.Equal(t, "Days", tmpl.humanize("days"))
}
