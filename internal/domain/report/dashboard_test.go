package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDashboard(t *testing.T) {
	defID := uuid.New()
	d, err := NewDashboard(uuid.New(), nil, DashboardDetails{Name: "Ops"}, []WidgetInput{
		{WidgetType: "metric", Title: "Revenue", Width: 2, Height: 1, ReportDefinitionID: &defID},
		{WidgetType: WidgetTable, Title: "Stock", PositionY: 1, Width: 4, Height: 2, ReportDefinitionID: &defID},
	})

	require.NoError(t, err)
	require.Len(t, d.Widgets, 2)
	assert.Equal(t, WidgetMetric, d.Widgets[0].WidgetType)
	assert.Equal(t, 1, d.Widgets[1].SortOrder)
	assert.Equal(t, d.ID, d.Widgets[0].DashboardID)
	assert.Equal(t, []uuid.UUID{defID}, d.ReportDefinitionIDs())
}

func TestDashboard_ApplyReplacesWidgets(t *testing.T) {
	d, err := NewDashboard(uuid.New(), nil, DashboardDetails{Name: "Ops"}, []WidgetInput{
		{WidgetType: WidgetList, Title: "A", Width: 1, Height: 1},
	})
	require.NoError(t, err)

	require.NoError(t, d.Apply(DashboardDetails{Name: "Ops 2"}, []WidgetInput{}))
	assert.Equal(t, "Ops 2", d.Name)
	assert.Empty(t, d.Widgets)

	err = d.Apply(DashboardDetails{Name: "Ops"}, []WidgetInput{{WidgetType: WidgetChart, Title: "B", Width: 0, Height: 1}})
	assert.ErrorContains(t, err, "width and height")
}

func TestExecution_Lifecycle(t *testing.T) {
	e := StartExecution(uuid.New(), uuid.New(), uuid.New(), map[string]string{"days": "30"})
	assert.Equal(t, ExecutionRunning, e.Status)

	e.Fail("boom", e.StartedAt.Add(150*time.Millisecond))
	assert.Equal(t, ExecutionFailed, e.Status)
	assert.Equal(t, "boom", e.ErrorMessage)
	assert.Equal(t, int64(150), e.DurationMs)
	require.NotNil(t, e.CompletedAt)
}
