package persistence

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var definitionQuery = QuerySpec{
	Resource:      "Report definition",
	SearchColumns: []string{"name", "description"},
	ExactColumns:  map[string]string{"reportType": "report_type"},
	BoolColumns:   map[string]string{"isSystemReport": "is_system_report"},
	SortColumns: map[string]string{
		"name":       "name",
		"reportType": "report_type",
	},
	DefaultSort: "name",
}

var executionQuery = QuerySpec{
	Resource: "Report execution",
	ExactColumns: map[string]string{
		"reportDefinitionId": "report_definition_id",
		"status":             "status",
	},
	SortColumns: map[string]string{
		"startedAt":  "started_at",
		"durationMs": "duration_ms",
	},
	DefaultSort: "started_at",
}

var dashboardQuery = QuerySpec{
	Resource:      "Dashboard",
	SearchColumns: []string{"name", "description"},
	BoolColumns: map[string]string{
		"isDefault":         "is_default",
		"isSystemDashboard": "is_system_dashboard",
	},
	SortColumns:  map[string]string{"name": "name"},
	DefaultSort:  "name",
	Preload:      []string{"Widgets"},
	PreloadOrder: map[string]string{"Widgets": "sort_order"},
}

// GormReportDefinitionRepository implements report.DefinitionRepository
type GormReportDefinitionRepository struct {
	*TenantScopedRepository[report.Definition]
}

// NewGormReportDefinitionRepository creates a new GormReportDefinitionRepository
func NewGormReportDefinitionRepository(db *gorm.DB) *GormReportDefinitionRepository {
	return &GormReportDefinitionRepository{NewTenantScopedRepository[report.Definition](db, definitionQuery)}
}

// CreateBatch inserts several definitions at once
func (r *GormReportDefinitionRepository) CreateBatch(ctx context.Context, tenantID uuid.UUID, defs []*report.Definition) error {
	if tenantID == uuid.Nil {
		return ErrTenantRequired
	}
	if len(defs) == 0 {
		return nil
	}
	for _, d := range defs {
		d.AssignTenant(tenantID)
	}
	return r.DB().WithContext(ctx).CreateInBatches(defs, 50).Error
}

// CountWidgets counts dashboard widgets that point at the definition
func (r *GormReportDefinitionRepository) CountWidgets(ctx context.Context, tenantID, definitionID uuid.UUID) (int64, error) {
	return r.CountWhere(ctx, tenantID, &report.DashboardWidget{}, "report_definition_id", definitionID)
}

// GormReportExecutionRepository implements report.ExecutionRepository
type GormReportExecutionRepository struct {
	*TenantScopedRepository[report.Execution]
}

// NewGormReportExecutionRepository creates a new GormReportExecutionRepository
func NewGormReportExecutionRepository(db *gorm.DB) *GormReportExecutionRepository {
	return &GormReportExecutionRepository{NewTenantScopedRepository[report.Execution](db, executionQuery)}
}

// FindByDefinition lists executions of a definition, newest first unless
// the filter asks otherwise
func (r *GormReportExecutionRepository) FindByDefinition(ctx context.Context, tenantID, definitionID uuid.UUID, filter shared.Filter) (shared.Paginated[report.Execution], error) {
	if filter.OrderBy == "" || filter.OrderBy == "created_at" {
		filter.OrderBy = "startedAt"
		filter.OrderDir = "desc"
	}
	return r.FindAllForTenant(ctx, tenantID, filter.WithFilter("reportDefinitionId", definitionID))
}

// DeleteByDefinition removes the history of a definition
func (r *GormReportExecutionRepository) DeleteByDefinition(ctx context.Context, tenantID, definitionID uuid.UUID) error {
	return r.DB().WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("report_definition_id = ?", definitionID).
		Delete(&report.Execution{}).Error
}

// DeleteFinishedBefore removes SUCCESS and FAILED runs started before cutoff
func (r *GormReportExecutionRepository) DeleteFinishedBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error) {
	if tenantID == uuid.Nil {
		return 0, ErrTenantRequired
	}
	result := r.DB().WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("status <> ? AND started_at < ?", report.ExecutionRunning, cutoff).
		Delete(&report.Execution{})
	return result.RowsAffected, result.Error
}

// GormDashboardRepository implements report.DashboardRepository
type GormDashboardRepository struct {
	*TenantScopedRepository[report.Dashboard]
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{NewTenantScopedRepository[report.Dashboard](db, dashboardQuery)}
}

// Create inserts the dashboard and its widgets
func (r *GormDashboardRepository) Create(ctx context.Context, tenantID uuid.UUID, dashboard *report.Dashboard) error {
	if err := r.TenantScopedRepository.Create(ctx, tenantID, dashboard); err != nil {
		return err
	}
	return r.insertWidgets(ctx, tenantID, dashboard)
}

// Save updates the header and replaces the stored widgets
func (r *GormDashboardRepository) Save(ctx context.Context, tenantID uuid.UUID, dashboard *report.Dashboard) error {
	if err := r.TenantScopedRepository.Update(ctx, tenantID, dashboard); err != nil {
		return err
	}
	err := r.DB().WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("dashboard_id = ?", dashboard.ID).
		Delete(&report.DashboardWidget{}).Error
	if err != nil {
		return err
	}
	return r.insertWidgets(ctx, tenantID, dashboard)
}

// ClearDefault unsets the default flag on every other dashboard
func (r *GormDashboardRepository) ClearDefault(ctx context.Context, tenantID, exceptID uuid.UUID) error {
	return r.DB().WithContext(ctx).
		Model(&report.Dashboard{}).
		Scopes(TenantScope(tenantID)).
		Where("id <> ? AND is_default = ?", exceptID, true).
		UpdateColumn("is_default", false).Error
}

// DeleteWithWidgets removes the dashboard and its widgets
func (r *GormDashboardRepository) DeleteWithWidgets(ctx context.Context, tenantID, id uuid.UUID) error {
	err := r.DB().WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("dashboard_id = ?", id).
		Delete(&report.DashboardWidget{}).Error
	if err != nil {
		return err
	}
	return r.DeleteForTenant(ctx, tenantID, id)
}

func (r *GormDashboardRepository) insertWidgets(ctx context.Context, tenantID uuid.UUID, dashboard *report.Dashboard) error {
	if len(dashboard.Widgets) == 0 {
		return nil
	}
	for i := range dashboard.Widgets {
		dashboard.Widgets[i].AssignTenant(tenantID)
		dashboard.Widgets[i].DashboardID = dashboard.ID
	}
	return r.DB().WithContext(ctx).Omit(clause.Associations).Create(&dashboard.Widgets).Error
}

// Ensure interfaces are implemented
var (
	_ report.DefinitionRepository = (*GormReportDefinitionRepository)(nil)
	_ report.ExecutionRepository  = (*GormReportExecutionRepository)(nil)
	_ report.DashboardRepository  = (*GormDashboardRepository)(nil)
)
