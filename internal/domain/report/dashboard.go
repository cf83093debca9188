package report

import (
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WidgetType is the visual kind of a dashboard widget
type WidgetType string

const (
	WidgetMetric WidgetType = "METRIC"
	WidgetChart  WidgetType = "CHART"
	WidgetTable  WidgetType = "TABLE"
	WidgetList   WidgetType = "LIST"
)

// IsValid checks if the type is a known value
func (t WidgetType) IsValid() bool {
	switch t {
	case WidgetMetric, WidgetChart, WidgetTable, WidgetList:
		return true
	}
	return false
}

// MaxWidgetsPerDashboard bounds the widget list of one dashboard
const MaxWidgetsPerDashboard = 50

// Dashboard is an ordered set of widgets
type Dashboard struct {
	shared.TenantEntity
	Name              string            `gorm:"type:varchar(200);not null" json:"name"`
	Description       string            `gorm:"type:text" json:"description"`
	IsSystemDashboard bool              `gorm:"not null;default:false" json:"isSystemDashboard"`
	IsDefault         bool              `gorm:"not null;default:false" json:"isDefault"`
	CreatedBy         *uuid.UUID        `gorm:"type:uuid" json:"createdBy,omitempty"`
	Widgets           []DashboardWidget `gorm:"foreignKey:DashboardID" json:"widgets"`
}

// TableName returns the table name for GORM
func (Dashboard) TableName() string {
	return "dashboards"
}

// DashboardWidget is a positioned tile on a dashboard
type DashboardWidget struct {
	shared.TenantEntity
	DashboardID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"dashboardId"`
	WidgetType         WidgetType     `gorm:"type:varchar(20);not null" json:"widgetType"`
	Title              string         `gorm:"type:varchar(200);not null" json:"title"`
	ReportDefinitionID *uuid.UUID     `gorm:"type:uuid;index" json:"reportDefinitionId,omitempty"`
	Config             map[string]any `gorm:"type:text;serializer:json" json:"config"`
	PositionX          int            `gorm:"not null;default:0" json:"positionX"`
	PositionY          int            `gorm:"not null;default:0" json:"positionY"`
	Width              int            `gorm:"not null;default:1" json:"width"`
	Height             int            `gorm:"not null;default:1" json:"height"`
	SortOrder          int            `gorm:"not null;default:0" json:"sortOrder"`
}

// TableName returns the table name for GORM
func (DashboardWidget) TableName() string {
	return "dashboard_widgets"
}

// WidgetInput describes a widget in a create or replace request
type WidgetInput struct {
	WidgetType         WidgetType
	Title              string
	ReportDefinitionID *uuid.UUID
	Config             map[string]any
	PositionX          int
	PositionY          int
	Width              int
	Height             int
}

// DashboardDetails holds the editable attributes of a dashboard
type DashboardDetails struct {
	Name        string
	Description string
	IsDefault   bool
}

// NewDashboard creates a user dashboard with its widgets
func NewDashboard(tenantID uuid.UUID, createdBy *uuid.UUID, d DashboardDetails, widgets []WidgetInput) (*Dashboard, error) {
	db := &Dashboard{
		TenantEntity: shared.NewTenantEntity(tenantID),
		CreatedBy:    createdBy,
	}
	if err := db.apply(d); err != nil {
		return nil, err
	}
	if err := db.setWidgets(widgets); err != nil {
		return nil, err
	}
	return db, nil
}

// Apply edits the header and, when widgets is non-nil, replaces the whole
// widget list. System dashboards cannot be edited.
func (d *Dashboard) Apply(details DashboardDetails, widgets []WidgetInput) error {
	if d.IsSystemDashboard {
		return shared.ErrSystemResource
	}
	if err := d.apply(details); err != nil {
		return err
	}
	if widgets != nil {
		return d.setWidgets(widgets)
	}
	return nil
}

// EnsureDeletable rejects deletion of system dashboards
func (d *Dashboard) EnsureDeletable() error {
	if d.IsSystemDashboard {
		return shared.ErrSystemResource
	}
	return nil
}

// ReportDefinitionIDs returns the distinct definitions the widgets refer to
func (d *Dashboard) ReportDefinitionIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, w := range d.Widgets {
		if w.ReportDefinitionID != nil && !seen[*w.ReportDefinitionID] {
			seen[*w.ReportDefinitionID] = true
			ids = append(ids, *w.ReportDefinitionID)
		}
	}
	return ids
}

func (d *Dashboard) apply(details DashboardDetails) error {
	name, err := shared.RequireName("Dashboard", details.Name, 200)
	if err != nil {
		return err
	}
	d.Name = name
	d.Description = details.Description
	d.IsDefault = details.IsDefault
	d.Touch()
	return nil
}

func (d *Dashboard) setWidgets(inputs []WidgetInput) error {
	if len(inputs) > MaxWidgetsPerDashboard {
		return shared.InvalidInput("A dashboard cannot have more than 50 widgets")
	}
	widgets := make([]DashboardWidget, 0, len(inputs))
	for i, in := range inputs {
		wt := WidgetType(strings.ToUpper(strings.TrimSpace(string(in.WidgetType))))
		if !wt.IsValid() {
			return shared.InvalidInput("Widget type must be one of METRIC, CHART, TABLE, LIST")
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return shared.InvalidInput("Widget title is required")
		}
		if in.PositionX < 0 || in.PositionY < 0 {
			return shared.InvalidInput("Widget position cannot be negative")
		}
		if in.Width <= 0 || in.Height <= 0 {
			return shared.InvalidInput("Widget width and height must be greater than zero")
		}
		if in.ReportDefinitionID != nil && *in.ReportDefinitionID == uuid.Nil {
			in.ReportDefinitionID = nil
		}
		cfg := in.Config
		if cfg == nil {
			cfg = map[string]any{}
		}
		widgets = append(widgets, DashboardWidget{
			TenantEntity:       shared.NewTenantEntity(d.TenantID),
			DashboardID:        d.ID,
			WidgetType:         wt,
			Title:              title,
			ReportDefinitionID: in.ReportDefinitionID,
			Config:             cfg,
			PositionX:          in.PositionX,
			PositionY:          in.PositionY,
			Width:              in.Width,
			Height:             in.Height,
			SortOrder:          i,
		})
	}
	d.Widgets = widgets
	return nil
}
