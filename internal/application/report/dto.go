package report

import (
	"time"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/google/uuid"
)

// ParameterInput describes a report parameter in a request
type ParameterInput struct {
	Name         string   `json:"name" binding:"required,max=100"`
	Label        string   `json:"label" binding:"max=200"`
	Type         string   `json:"type" binding:"omitempty,oneof=STRING NUMBER DATE BOOLEAN UUID SELECT"`
	IsRequired   bool     `json:"isRequired"`
	DefaultValue string   `json:"defaultValue"`
	Options      []string `json:"options"`
}

// CreateDefinitionRequest represents a request to save a report definition
type CreateDefinitionRequest struct {
	Name        string           `json:"name" binding:"required,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	ReportType  string           `json:"reportType" binding:"required"`
	Parameters  []ParameterInput `json:"parameters" binding:"dive"`
}

// UpdateDefinitionRequest represents a partial definition update. A non-nil
// Parameters replaces the whole list.
type UpdateDefinitionRequest struct {
	Name        *string           `json:"name" binding:"omitempty,max=200"`
	Description *string           `json:"description" binding:"omitempty,max=2000"`
	ReportType  *string           `json:"reportType"`
	Parameters  *[]ParameterInput `json:"parameters"`
}

// ExecuteRequest carries parameter values for a run
type ExecuteRequest struct {
	Parameters map[string]string `json:"parameters"`
}

func toParameters(in []ParameterInput) []report.Parameter {
	out := make([]report.Parameter, 0, len(in))
	for _, p := range in {
		out = append(out, report.Parameter{
			Name:         p.Name,
			Label:        p.Label,
			Type:         report.ParameterType(p.Type),
			IsRequired:   p.IsRequired,
			DefaultValue: p.DefaultValue,
			Options:      p.Options,
		})
	}
	return out
}

// DefinitionResponse represents a report definition in API responses
type DefinitionResponse struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	ReportType     string             `json:"reportType"`
	Parameters     []report.Parameter `json:"parameters"`
	IsSystemReport bool               `json:"isSystemReport"`
	CreatedBy      *uuid.UUID         `json:"createdBy,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// ToDefinitionResponse converts a domain Definition to DefinitionResponse
func ToDefinitionResponse(d *report.Definition) DefinitionResponse {
	params := d.Parameters
	if params == nil {
		params = []report.Parameter{}
	}
	return DefinitionResponse{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		ReportType:     string(d.ReportType),
		Parameters:     params,
		IsSystemReport: d.IsSystemReport,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// ExecutionResponse represents a report run in API responses
type ExecutionResponse struct {
	ID                 uuid.UUID         `json:"id"`
	ReportDefinitionID uuid.UUID         `json:"reportDefinitionId"`
	Status             string            `json:"status"`
	Parameters         map[string]string `json:"parameters"`
	Result             *report.Result    `json:"result,omitempty"`
	ErrorMessage       string            `json:"errorMessage,omitempty"`
	StartedAt          time.Time         `json:"startedAt"`
	CompletedAt        *time.Time        `json:"completedAt,omitempty"`
	DurationMs         int64             `json:"durationMs"`
	ExecutedBy         uuid.UUID         `json:"executedBy"`
}

// ToExecutionResponse converts a domain Execution to ExecutionResponse
func ToExecutionResponse(e *report.Execution) ExecutionResponse {
	return ExecutionResponse{
		ID:                 e.ID,
		ReportDefinitionID: e.ReportDefinitionID,
		Status:             string(e.Status),
		Parameters:         e.Parameters,
		Result:             e.Result,
		ErrorMessage:       e.ErrorMessage,
		StartedAt:          e.StartedAt,
		CompletedAt:        e.CompletedAt,
		DurationMs:         e.DurationMs,
		ExecutedBy:         e.ExecutedBy,
	}
}

// WidgetRequest describes a dashboard widget in a request
type WidgetRequest struct {
	WidgetType         string         `json:"widgetType" binding:"required"`
	Title              string         `json:"title" binding:"required,max=200"`
	ReportDefinitionID *uuid.UUID     `json:"reportDefinitionId"`
	Config             map[string]any `json:"config"`
	PositionX          int            `json:"positionX"`
	PositionY          int            `json:"positionY"`
	Width              int            `json:"width"`
	Height             int            `json:"height"`
}

// CreateDashboardRequest represents a request to create a dashboard
type CreateDashboardRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	IsDefault   bool            `json:"isDefault"`
	Widgets     []WidgetRequest `json:"widgets" binding:"dive"`
}

// UpdateDashboardRequest represents a partial dashboard update. A non-nil
// Widgets replaces every widget of the dashboard.
type UpdateDashboardRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	IsDefault   *bool            `json:"isDefault"`
	Widgets     *[]WidgetRequest `json:"widgets"`
}

func toWidgetInputs(in []WidgetRequest) []report.WidgetInput {
	out := make([]report.WidgetInput, 0, len(in))
	for _, w := range in {
		out = append(out, report.WidgetInput{
			WidgetType:         report.WidgetType(w.WidgetType),
			Title:              w.Title,
			ReportDefinitionID: w.ReportDefinitionID,
			Config:             w.Config,
			PositionX:          w.PositionX,
			PositionY:          w.PositionY,
			Width:              w.Width,
			Height:             w.Height,
		})
	}
	return out
}

// WidgetResponse represents a widget in API responses
type WidgetResponse struct {
	ID                 uuid.UUID      `json:"id"`
	WidgetType         string         `json:"widgetType"`
	Title              string         `json:"title"`
	ReportDefinitionID *uuid.UUID     `json:"reportDefinitionId,omitempty"`
	Config             map[string]any `json:"config"`
	PositionX          int            `json:"positionX"`
	PositionY          int            `json:"positionY"`
	Width              int            `json:"width"`
	Height             int            `json:"height"`
	SortOrder          int            `json:"sortOrder"`
}

// DashboardResponse represents a dashboard in API responses
type DashboardResponse struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	IsSystemDashboard bool             `json:"isSystemDashboard"`
	IsDefault         bool             `json:"isDefault"`
	CreatedBy         *uuid.UUID       `json:"createdBy,omitempty"`
	Widgets           []WidgetResponse `json:"widgets"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// ToDashboardResponse converts a domain Dashboard to DashboardResponse
func ToDashboardResponse(d *report.Dashboard) DashboardResponse {
	widgets := make([]WidgetResponse, 0, len(d.Widgets))
	for _, w := range d.Widgets {
		widgets = append(widgets, WidgetResponse{
			ID:                 w.ID,
			WidgetType:         string(w.WidgetType),
			Title:              w.Title,
			ReportDefinitionID: w.ReportDefinitionID,
			Config:             w.Config,
			PositionX:          w.PositionX,
			PositionY:          w.PositionY,
			Width:              w.Width,
			Height:             w.Height,
			SortOrder:          w.SortOrder,
		})
	}
	return DashboardResponse{
		ID:                d.ID,
		Name:              d.Name,
		Description:       d.Description,
		IsSystemDashboard: d.IsSystemDashboard,
		IsDefault:         d.IsDefault,
		CreatedBy:         d.CreatedBy,
		Widgets:           widgets,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
