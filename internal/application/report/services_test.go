package report

import (
	"context"
	"testing"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/persistence"
	"github.com/bizledger/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	definitions *DefinitionService
	dashboards  *DashboardService
	engine      *Engine
	tenantID    uuid.UUID
	userID      uuid.UUID
	system      []*report.Definition
	overview    *report.Dashboard
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	defRepo := persistence.NewGormReportDefinitionRepository(db)
	dashRepo := persistence.NewGormDashboardRepository(db)
	scope := persistence.NewGormTransactionScope(db)

	system := report.SystemDefinitions(tenantID)
	require.NoError(t, defRepo.CreateBatch(ctx, tenantID, system))
	overview := report.SystemDashboard(tenantID, system)
	require.NoError(t, dashRepo.Create(ctx, tenantID, overview))

	return &catalogFixture{
		definitions: NewDefinitionService(defRepo, scope, nil),
		dashboards:  NewDashboardService(dashRepo, scope, nil),
		engine: NewEngine(defRepo, persistence.NewGormReportExecutionRepository(db),
			DefaultGenerators(persistence.NewGormReportDataRepository(db)), nil, nil),
		tenantID: tenantID,
		userID:   uuid.New(),
		system:   system,
		overview: overview,
	}
}

func (f *catalogFixture) customDefinition(t *testing.T) *DefinitionResponse {
	t.Helper()
	def, err := f.definitions.Create(context.Background(), f.tenantID, f.userID, CreateDefinitionRequest{
		Name:       "Quarterly sales",
		ReportType: "sales_summary",
		Parameters: []ParameterInput{
			{Name: "startDate", Type: "DATE", IsRequired: true},
			{Name: "endDate", Type: "DATE", IsRequired: true},
			{Name: "groupBy", Type: "SELECT", DefaultValue: "month", Options: report.SalesGroupings},
		},
	})
	require.NoError(t, err)
	return def
}

func TestDefinitionService_CreateAndList(t *testing.T) {
	f := newCatalogFixture(t)
	def := f.customDefinition(t)

	assert.Equal(t, "SALES_SUMMARY", def.ReportType)
	assert.False(t, def.IsSystemReport)
	require.NotNil(t, def.CreatedBy)
	assert.Equal(t, f.userID, *def.CreatedBy)
	assert.Equal(t, "startDate", def.Parameters[0].Label)

	page, err := f.definitions.List(context.Background(), f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(len(f.system)+1), page.Total)
}

func TestDefinitionService_CreateRejectsUnknownType(t *testing.T) {
	f := newCatalogFixture(t)
	_, err := f.definitions.Create(context.Background(), f.tenantID, f.userID, CreateDefinitionRequest{
		Name:       "Forecast",
		ReportType: "FORECAST",
	})
	assert.True(t, shared.IsCode(err, shared.CodeInvalidInput))
}

func TestDefinitionService_SystemDefinitionsAreReadOnly(t *testing.T) {
	f := newCatalogFixture(t)
	name := "Renamed"

	_, err := f.definitions.Update(context.Background(), f.tenantID, f.system[0].ID, UpdateDefinitionRequest{Name: &name})
	assert.ErrorIs(t, err, shared.ErrSystemResource)

	err = f.definitions.Delete(context.Background(), f.tenantID, f.system[0].ID)
	assert.ErrorIs(t, err, shared.ErrSystemResource)
}

func TestDefinitionService_Update(t *testing.T) {
	f := newCatalogFixture(t)
	def := f.customDefinition(t)

	name := "Monthly sales"
	params := []ParameterInput{{Name: "groupBy", Type: "SELECT", DefaultValue: "month", Options: report.SalesGroupings}}
	updated, err := f.definitions.Update(context.Background(), f.tenantID, def.ID, UpdateDefinitionRequest{
		Name:       &name,
		Parameters: &params,
	})
	require.NoError(t, err)
	assert.Equal(t, "Monthly sales", updated.Name)
	require.Len(t, updated.Parameters, 1)

	got, err := f.definitions.GetByID(context.Background(), f.tenantID, def.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monthly sales", got.Name)
	assert.Equal(t, "SALES_SUMMARY", got.ReportType)
}

func TestDefinitionService_DeleteRemovesHistory(t *testing.T) {
	f := newCatalogFixture(t)
	def := f.customDefinition(t)
	ctx := context.Background()

	_, err := f.engine.Execute(ctx, f.tenantID, f.userID, def.ID, map[string]string{
		"startDate": "2024-01-01",
		"endDate":   "2024-03-31",
	})
	require.NoError(t, err)

	require.NoError(t, f.definitions.Delete(ctx, f.tenantID, def.ID))
	_, err = f.definitions.GetByID(ctx, f.tenantID, def.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDefinitionService_DeleteBlockedByWidget(t *testing.T) {
	f := newCatalogFixture(t)
	def := f.customDefinition(t)
	ctx := context.Background()

	_, err := f.dashboards.Create(ctx, f.tenantID, f.userID, CreateDashboardRequest{
		Name:    "Sales",
		Widgets: []WidgetRequest{{WidgetType: "CHART", Title: "Quarter", Width: 1, Height: 1, ReportDefinitionID: &def.ID}},
	})
	require.NoError(t, err)

	err = f.definitions.Delete(ctx, f.tenantID, def.ID)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeInUse))
}

func TestDashboardService_CreateDefaultClearsPrevious(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	created, err := f.dashboards.Create(ctx, f.tenantID, f.userID, CreateDashboardRequest{
		Name:      "Mine",
		IsDefault: true,
		Widgets: []WidgetRequest{
			{WidgetType: "METRIC", Title: "Sales", Width: 1, Height: 1, ReportDefinitionID: &f.system[0].ID},
			{WidgetType: "LIST", Title: "Notes", Width: 1, Height: 1},
		},
	})
	require.NoError(t, err)
	assert.True(t, created.IsDefault)
	require.Len(t, created.Widgets, 2)
	assert.Equal(t, 1, created.Widgets[1].SortOrder)

	overview, err := f.dashboards.GetByID(ctx, f.tenantID, f.overview.ID)
	require.NoError(t, err)
	assert.False(t, overview.IsDefault)

	page, err := f.dashboards.List(ctx, f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	defaults := 0
	for _, d := range page.Items {
		if d.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestDashboardService_RejectsForeignDefinition(t *testing.T) {
	f := newCatalogFixture(t)
	foreign := uuid.New()

	_, err := f.dashboards.Create(context.Background(), f.tenantID, f.userID, CreateDashboardRequest{
		Name:    "Broken",
		Widgets: []WidgetRequest{{WidgetType: "TABLE", Title: "Ghost", Width: 1, Height: 1, ReportDefinitionID: &foreign}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	page, err := f.dashboards.List(context.Background(), f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total, "nothing stored")
}

func TestDashboardService_UpdateReplacesWidgets(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	created, err := f.dashboards.Create(ctx, f.tenantID, f.userID, CreateDashboardRequest{
		Name:    "Mine",
		Widgets: []WidgetRequest{{WidgetType: "METRIC", Title: "One", Width: 1, Height: 1}, {WidgetType: "METRIC", Title: "Two", Width: 1, Height: 1}},
	})
	require.NoError(t, err)

	name := "Renamed"
	updated, err := f.dashboards.Update(ctx, f.tenantID, created.ID, UpdateDashboardRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Len(t, updated.Widgets, 2, "nil widgets keeps the list")

	widgets := []WidgetRequest{{WidgetType: "TABLE", Title: "Only", Width: 1, Height: 1, ReportDefinitionID: &f.system[1].ID}}
	_, err = f.dashboards.Update(ctx, f.tenantID, created.ID, UpdateDashboardRequest{Widgets: &widgets})
	require.NoError(t, err)

	got, err := f.dashboards.GetByID(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Widgets, 1)
	assert.Equal(t, "Only", got.Widgets[0].Title)
}

func TestDashboardService_SystemDashboardIsReadOnly(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	name := "Mine now"

	_, err := f.dashboards.Update(ctx, f.tenantID, f.overview.ID, UpdateDashboardRequest{Name: &name})
	assert.ErrorIs(t, err, shared.ErrSystemResource)

	err = f.dashboards.Delete(ctx, f.tenantID, f.overview.ID)
	assert.ErrorIs(t, err, shared.ErrSystemResource)
}

func TestDashboardService_Delete(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	created, err := f.dashboards.Create(ctx, f.tenantID, f.userID, CreateDashboardRequest{
		Name:    "Temp",
		Widgets: []WidgetRequest{{WidgetType: "METRIC", Title: "One", Width: 1, Height: 1, ReportDefinitionID: &f.system[0].ID}},
	})
	require.NoError(t, err)

	require.NoError(t, f.dashboards.Delete(ctx, f.tenantID, created.ID))
	_, err = f.dashboards.GetByID(ctx, f.tenantID, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// only the overview widget still points at the definition
	widgets, err := f.definitions.defRepo.CountWidgets(ctx, f.tenantID, f.system[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), widgets)
}
