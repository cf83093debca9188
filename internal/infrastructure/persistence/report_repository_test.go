package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormReportDefinitionRepository_SystemCatalog(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReportDefinitionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	defs := report.SystemDefinitions(tenantID)
	require.NoError(t, repo.CreateBatch(ctx, tenantID, defs))

	page, err := repo.FindAllForTenant(ctx, tenantID, shared.DefaultFilter().WithFilter("isSystemReport", true))
	require.NoError(t, err)
	assert.Equal(t, int64(len(report.AllTypes())), page.Total)

	found, err := repo.FindByIDForTenant(ctx, tenantID, defs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, defs[0].Parameters, found.Parameters)
}

func TestGormReportExecutionRepository_History(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReportExecutionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	definitionID := uuid.New()

	first := report.StartExecution(tenantID, definitionID, uuid.New(), map[string]string{"days": "30"})
	require.NoError(t, repo.Create(ctx, tenantID, first))

	second := report.StartExecution(tenantID, definitionID, uuid.New(), nil)
	second.StartedAt = first.StartedAt.Add(time.Minute)
	require.NoError(t, repo.Create(ctx, tenantID, second))

	second.Fail("boom", second.StartedAt.Add(time.Second))
	require.NoError(t, repo.Update(ctx, tenantID, second))

	page, err := repo.FindByDefinition(ctx, tenantID, definitionID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID, "newest first")
	assert.Equal(t, report.ExecutionFailed, page.Items[0].Status)
	assert.Equal(t, "boom", page.Items[0].ErrorMessage)
	assert.Equal(t, "30", page.Items[1].Parameters["days"])

	require.NoError(t, repo.DeleteByDefinition(ctx, tenantID, definitionID))
	page, err = repo.FindByDefinition(ctx, tenantID, definitionID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestGormReportExecutionRepository_DeleteFinishedBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReportExecutionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	otherTenant := uuid.New()
	definitionID := uuid.New()
	cutoff := time.Now().Add(-24 * time.Hour)

	old := report.StartExecution(tenantID, definitionID, uuid.New(), nil)
	old.StartedAt = cutoff.Add(-time.Hour)
	old.Succeed(&report.Result{}, old.StartedAt.Add(time.Second))
	require.NoError(t, repo.Create(ctx, tenantID, old))

	stuck := report.StartExecution(tenantID, definitionID, uuid.New(), nil)
	stuck.StartedAt = cutoff.Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, tenantID, stuck))

	recent := report.StartExecution(tenantID, definitionID, uuid.New(), nil)
	recent.Fail("boom", recent.StartedAt.Add(time.Second))
	require.NoError(t, repo.Create(ctx, tenantID, recent))

	foreign := report.StartExecution(otherTenant, definitionID, uuid.New(), nil)
	foreign.StartedAt = cutoff.Add(-time.Hour)
	foreign.Fail("boom", foreign.StartedAt.Add(time.Second))
	require.NoError(t, repo.Create(ctx, otherTenant, foreign))

	deleted, err := repo.DeleteFinishedBefore(ctx, tenantID, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByIDForTenant(ctx, tenantID, old.ID)
	assert.Error(t, err)
	_, err = repo.FindByIDForTenant(ctx, tenantID, stuck.ID)
	assert.NoError(t, err, "running executions are kept")
	_, err = repo.FindByIDForTenant(ctx, otherTenant, foreign.ID)
	assert.NoError(t, err, "other tenants are untouched")

	_, err = repo.DeleteFinishedBefore(ctx, uuid.Nil, cutoff)
	assert.ErrorIs(t, err, ErrTenantRequired)
}

func TestGormDashboardRepository_SaveReplacesWidgets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDashboardRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	dash, err := report.NewDashboard(tenantID, nil, report.DashboardDetails{Name: "Ops", IsDefault: true}, []report.WidgetInput{
		{WidgetType: report.WidgetMetric, Title: "Revenue", Width: 2, Height: 1},
		{WidgetType: report.WidgetTable, Title: "Top customers", Width: 4, Height: 2},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tenantID, dash))

	found, err := repo.FindByIDForTenant(ctx, tenantID, dash.ID)
	require.NoError(t, err)
	require.Len(t, found.Widgets, 2)
	assert.Equal(t, "Revenue", found.Widgets[0].Title)

	require.NoError(t, found.Apply(report.DashboardDetails{Name: "Ops v2"}, []report.WidgetInput{
		{WidgetType: report.WidgetChart, Title: "Sales by day", Width: 6, Height: 3},
	}))
	require.NoError(t, repo.Save(ctx, tenantID, found))

	found, err = repo.FindByIDForTenant(ctx, tenantID, dash.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ops v2", found.Name)
	assert.False(t, found.IsDefault)
	require.Len(t, found.Widgets, 1)
	assert.Equal(t, "Sales by day", found.Widgets[0].Title)

	require.NoError(t, repo.DeleteWithWidgets(ctx, tenantID, dash.ID))
	var n int64
	require.NoError(t, db.Model(&report.DashboardWidget{}).Count(&n).Error)
	assert.Zero(t, n)
}
