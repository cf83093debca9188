package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// wideTableColumns is the column count above which PDFs print landscape
const wideTableColumns = 6

const reportLayout = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; margin: 0; }
h1 { font-size: 20px; margin: 0 0 4px; }
h2 { font-size: 14px; margin: 20px 0 6px; border-bottom: 1px solid #ccc; padding-bottom: 2px; }
.meta { color: #666; margin-bottom: 12px; }
table { border-collapse: collapse; width: 100%; }
th, td { padding: 4px 6px; border-bottom: 1px solid #eee; text-align: left; }
th { background: #f4f4f4; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.summary td:first-child { width: 40%; color: #555; }
.empty { color: #888; font-style: italic; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Generated {{.GeneratedAt}}</div>
{{- if .Parameters}}
<h2>Parameters</h2>
<table class="summary">
{{- range .Parameters}}
<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>
{{- end}}
</table>
{{- end}}
<h2>Summary</h2>
<table class="summary">
{{- range .Summary}}
<tr><td>{{.Label}}</td><td{{if .Numeric}} class="num"{{end}}>{{.Value}}</td></tr>
{{- end}}
</table>
{{- range .Tables}}
<h2>{{.Title}}</h2>
{{- if .Rows}}
<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td{{if .Numeric}} class="num"{{end}}>{{.Value}}</td>{{end}}</tr>
{{- end}}
</table>
{{- else}}
<p class="empty">No data</p>
{{- end}}
{{- end}}
</body>
</html>
`

// ReportTemplate renders a report result as a standalone HTML document
type ReportTemplate struct {
	tmpl    *template.Template
	lang    language.Tag
	printer *message.Printer
	caser   cases.Caser
}

type cell struct {
	Label   string
	Value   string
	Numeric bool
}

type tableView struct {
	Title   string
	Headers []string
	Rows    [][]cell
}

type reportView struct {
	Lang        string
	Title       string
	GeneratedAt string
	Parameters  []cell
	Summary     []cell
	Tables      []tableView
}

// NewReportTemplate creates a renderer that formats numbers for locale,
// e.g. "en" or "de". Unknown locales fall back to English.
func NewReportTemplate(locale string) *ReportTemplate {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &ReportTemplate{
		tmpl:    template.Must(template.New("report").Parse(reportLayout)),
		lang:    tag,
		printer: message.NewPrinter(tag),
		caser:   cases.Title(tag),
	}
}

// Wide reports whether the result has a table too wide for portrait paper
func (t *ReportTemplate) Wide(result *report.Result) bool {
	if len(result.Columns) > wideTableColumns {
		return true
	}
	for _, s := range result.Sections {
		if len(s.Columns) > wideTableColumns {
			return true
		}
	}
	return false
}

// Render produces the HTML document. title overrides the result's own title
// when non-empty.
func (t *ReportTemplate) Render(title string, result *report.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: report result is nil", ErrEmptyDocument)
	}
	if strings.TrimSpace(title) == "" {
		title = result.Title
	}

	view := reportView{
		Lang:        t.lang.String(),
		Title:       title,
		GeneratedAt: result.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
	}

	for _, k := range sortedKeys(result.Parameters) {
		view.Parameters = append(view.Parameters, cell{Label: t.humanize(k), Value: result.Parameters[k]})
	}
	for _, k := range sortedKeys(result.Summary) {
		v, numeric := t.format(result.Summary[k])
		view.Summary = append(view.Summary, cell{Label: t.humanize(k), Value: v, Numeric: numeric})
	}

	view.Tables = append(view.Tables, t.table("Breakdown", result.Columns, result.Groups))
	for _, k := range sortedKeys(result.Sections) {
		s := result.Sections[k]
		sectionTitle := s.Title
		if sectionTitle == "" {
			sectionTitle = t.humanize(k)
		}
		view.Tables = append(view.Tables, t.table(sectionTitle, s.Columns, s.Rows))
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("%w: execute report template: %w", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

func (t *ReportTemplate) table(title string, columns []report.Column, rows []report.Row) tableView {
	tv := tableView{Title: title}
	for _, c := range columns {
		tv.Headers = append(tv.Headers, c.Label)
	}
	for _, row := range rows {
		cells := make([]cell, 0, len(columns))
		for _, c := range columns {
			v, numeric := t.format(row[c.Key])
			cells = append(cells, cell{Value: v, Numeric: numeric})
		}
		tv.Rows = append(tv.Rows, cells)
	}
	return tv
}

// format renders a value for display and reports whether it is a number
func (t *ReportTemplate) format(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case decimal.Decimal:
		f, _ := x.Round(2).Float64()
		return t.printer.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2))), true
	case int:
		return t.printer.Sprint(number.Decimal(x)), true
	case int64:
		return t.printer.Sprint(number.Decimal(x)), true
	case float64:
		return t.printer.Sprint(number.Decimal(x, number.MaxFractionDigits(2))), true
	case time.Time:
		return x.UTC().Format("2006-01-02"), false
	case string:
		return x, false
	default:
		return fmt.Sprint(x), false
	}
}

// humanize turns a camelCase key into a title, e.g. totalRevenue into
// "Total Revenue"
func (t *ReportTemplate) humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return t.caser.String(b.String())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
