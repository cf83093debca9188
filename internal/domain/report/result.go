package report

import "time"

// Row is one line of a grouped breakdown
type Row map[string]any

// Column describes a key of Row for rendering
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Section is an extra table attached to a result, e.g. a low stock list
type Section struct {
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Result is the structured output of a generator: a summary plus a grouped
// breakdown and optional extra sections
type Result struct {
	ReportType  ReportType         `json:"reportType"`
	Title       string             `json:"title"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Parameters  map[string]string  `json:"parameters"`
	Summary     map[string]any     `json:"summary"`
	Columns     []Column           `json:"columns"`
	Groups      []Row              `json:"groups"`
	Sections    map[string]Section `json:"sections,omitempty"`
}

// NewResult creates an empty result for a report type
func NewResult(rt ReportType, title string, params map[string]string, columns ...Column) *Result {
	return &Result{
		ReportType:  rt,
		Title:       title,
		GeneratedAt: time.Now(),
		Parameters:  params,
		Summary:     make(map[string]any),
		Columns:     columns,
		Groups:      []Row{},
	}
}

// AddSection attaches an extra table under key
func (r *Result) AddSection(key string, s Section) {
	if r.Sections == nil {
		r.Sections = make(map[string]Section)
	}
	if s.Rows == nil {
		s.Rows = []Row{}
	}
	r.Sections[key] = s
}
