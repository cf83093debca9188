package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DateLayout is the accepted format of DATE parameters
const DateLayout = "2006-01-02"

// ReportType selects the generator that produces a report
type ReportType string

const (
	TypeSalesSummary      ReportType = "SALES_SUMMARY"
	TypeInventorySummary  ReportType = "INVENTORY_SUMMARY"
	TypeCustomerAnalytics ReportType = "CUSTOMER_ANALYTICS"
	TypeVendorPerformance ReportType = "VENDOR_PERFORMANCE"
	TypeFinancialSummary  ReportType = "FINANCIAL_SUMMARY"
)

// AllTypes lists every report type in display order
func AllTypes() []ReportType {
	return []ReportType{
		TypeSalesSummary,
		TypeInventorySummary,
		TypeCustomerAnalytics,
		TypeVendorPerformance,
		TypeFinancialSummary,
	}
}

// IsValid checks if the type is a known value
func (t ReportType) IsValid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ParameterType is the value type of a report parameter
type ParameterType string

const (
	ParamString ParameterType = "STRING"
	ParamNumber ParameterType = "NUMBER"
	ParamDate   ParameterType = "DATE"
	ParamBool   ParameterType = "BOOLEAN"
	ParamUUID   ParameterType = "UUID"
	ParamSelect ParameterType = "SELECT"
)

// IsValid checks if the type is a known value
func (t ParameterType) IsValid() bool {
	switch t {
	case ParamString, ParamNumber, ParamDate, ParamBool, ParamUUID, ParamSelect:
		return true
	}
	return false
}

// Parameter describes one input of a report definition
type Parameter struct {
	Name         string        `json:"name"`
	Label        string        `json:"label"`
	Type         ParameterType `json:"type"`
	IsRequired   bool          `json:"isRequired"`
	DefaultValue string        `json:"defaultValue,omitempty"`
	Options      []string      `json:"options,omitempty"`
}

// check validates a supplied value against the parameter type
func (p Parameter) check(value string) error {
	var err error
	switch p.Type {
	case ParamNumber:
		var f float64
		if f, err = strconv.ParseFloat(value, 64); err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
			err = strconv.ErrRange
		}
	case ParamDate:
		_, err = time.Parse(DateLayout, value)
	case ParamBool:
		_, err = strconv.ParseBool(value)
	case ParamUUID:
		_, err = uuid.Parse(value)
	case ParamSelect:
		for _, opt := range p.Options {
			if strings.EqualFold(opt, value) {
				return nil
			}
		}
		return shared.InvalidInput(fmt.Sprintf("Parameter '%s' must be one of %s", p.Name, strings.Join(p.Options, ", ")))
	}
	if err != nil {
		return shared.InvalidInput(fmt.Sprintf("Parameter '%s' must be a valid %s", p.Name, strings.ToLower(string(p.Type))))
	}
	return nil
}

// Definition is a saved, parameterized report
type Definition struct {
	shared.TenantEntity
	Name           string      `gorm:"type:varchar(200);not null" json:"name"`
	Description    string      `gorm:"type:text" json:"description"`
	ReportType     ReportType  `gorm:"type:varchar(50);not null;index" json:"reportType"`
	Parameters     []Parameter `gorm:"type:text;serializer:json" json:"parameters"`
	IsSystemReport bool        `gorm:"not null;default:false" json:"isSystemReport"`
	CreatedBy      *uuid.UUID  `gorm:"type:uuid" json:"createdBy,omitempty"`
}

// TableName returns the table name for GORM
func (Definition) TableName() string {
	return "report_definitions"
}

// DefinitionDetails holds the editable attributes of a definition
type DefinitionDetails struct {
	Name        string
	Description string
	ReportType  ReportType
	Parameters  []Parameter
}

// NewDefinition creates a user-defined report definition
func NewDefinition(tenantID uuid.UUID, createdBy *uuid.UUID, d DefinitionDetails) (*Definition, error) {
	def := &Definition{
		TenantEntity: shared.NewTenantEntity(tenantID),
		CreatedBy:    createdBy,
	}
	if err := def.apply(d); err != nil {
		return nil, err
	}
	return def, nil
}

// Apply edits the definition. System definitions cannot be edited.
func (d *Definition) Apply(details DefinitionDetails) error {
	if d.IsSystemReport {
		return shared.ErrSystemResource
	}
	return d.apply(details)
}

// EnsureDeletable rejects deletion of system definitions
func (d *Definition) EnsureDeletable() error {
	if d.IsSystemReport {
		return shared.ErrSystemResource
	}
	return nil
}

func (d *Definition) apply(details DefinitionDetails) error {
	name, err := shared.RequireName("Report", details.Name, 200)
	if err != nil {
		return err
	}
	rt := ReportType(strings.ToUpper(strings.TrimSpace(string(details.ReportType))))
	if !rt.IsValid() {
		return shared.InvalidInput("Unknown report type")
	}
	params, err := normalizeParameters(details.Parameters)
	if err != nil {
		return err
	}
	d.Name = name
	d.Description = details.Description
	d.ReportType = rt
	d.Parameters = params
	d.Touch()
	return nil
}

func normalizeParameters(in []Parameter) ([]Parameter, error) {
	out := make([]Parameter, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, shared.InvalidInput("Parameter name is required")
		}
		if seen[p.Name] {
			return nil, shared.InvalidInput(fmt.Sprintf("Duplicate parameter '%s'", p.Name))
		}
		seen[p.Name] = true
		p.Type = ParameterType(strings.ToUpper(string(p.Type)))
		if p.Type == "" {
			p.Type = ParamString
		}
		if !p.Type.IsValid() {
			return nil, shared.InvalidInput(fmt.Sprintf("Parameter '%s' has an unknown type", p.Name))
		}
		if p.Type == ParamSelect && len(p.Options) == 0 {
			return nil, shared.InvalidInput(fmt.Sprintf("Parameter '%s' needs options", p.Name))
		}
		if p.Label == "" {
			p.Label = p.Name
		}
		if p.DefaultValue != "" {
			if err := p.check(p.DefaultValue); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// MissingParameters returns the names of required parameters that have no
// non-blank value, in definition order
func (d *Definition) MissingParameters(values map[string]string) []string {
	var missing []string
	for _, p := range d.Parameters {
		if !p.IsRequired {
			continue
		}
		if strings.TrimSpace(values[p.Name]) == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// ResolveParameters validates supplied values and fills in defaults.
// Values for undeclared names are passed through unchanged.
func (d *Definition) ResolveParameters(values map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(values)+len(d.Parameters))
	for k, v := range values {
		resolved[k] = strings.TrimSpace(v)
	}
	for _, p := range d.Parameters {
		v := resolved[p.Name]
		if v == "" {
			if p.DefaultValue == "" {
				delete(resolved, p.Name)
				continue
			}
			v = p.DefaultValue
		}
		if err := p.check(v); err != nil {
			return nil, err
		}
		resolved[p.Name] = v
	}
	if err := checkPeriod(resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// checkPeriod validates the reporting period shared by every report type,
// whether or not the definition declares it
func checkPeriod(values map[string]string) error {
	var bounds [2]time.Time
	for i, name := range []string{"startDate", "endDate"} {
		v := values[name]
		if v == "" {
			continue
		}
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return shared.InvalidInput(fmt.Sprintf("Parameter '%s' must be a date in YYYY-MM-DD format", name))
		}
		bounds[i] = t
	}
	if !bounds[0].IsZero() && !bounds[1].IsZero() && bounds[0].After(bounds[1]) {
		return shared.InvalidInput("startDate must not be after endDate")
	}
	return nil
}
