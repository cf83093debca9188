//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportExecutions_DeleteFinishedBefore(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	tenant, err := identity.NewTenant("Retention " + uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormTenantRepository(tdb.DB).Create(ctx, tenant))

	definition := report.SystemDefinitions(tenant.ID)[0]
	require.NoError(t, persistence.NewGormReportDefinitionRepository(tdb.DB).Create(ctx, tenant.ID, definition))

	executions := persistence.NewGormReportExecutionRepository(tdb.DB)
	now := time.Now().UTC()
	old := now.AddDate(0, 0, -120)

	insert := func(startedAt time.Time, finish func(e *report.Execution)) uuid.UUID {
		e := report.StartExecution(tenant.ID, definition.ID, uuid.New(), nil)
		e.StartedAt = startedAt
		if finish != nil {
			finish(e)
		}
		require.NoError(t, executions.Create(ctx, tenant.ID, e))
		return e.ID
	}
	oldSuccess := insert(old, func(e *report.Execution) { e.Succeed(&report.Result{}, old.Add(time.Second)) })
	oldFailure := insert(old, func(e *report.Execution) { e.Fail("boom", old.Add(time.Second)) })
	oldRunning := insert(old, nil)
	recent := insert(now, func(e *report.Execution) { e.Succeed(&report.Result{}, now) })

	deleted, err := executions.DeleteFinishedBefore(ctx, tenant.ID, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	for _, id := range []uuid.UUID{oldSuccess, oldFailure} {
		_, err := executions.FindByIDForTenant(ctx, tenant.ID, id)
		assert.Error(t, err)
	}
	for _, id := range []uuid.UUID{oldRunning, recent} {
		_, err := executions.FindByIDForTenant(ctx, tenant.ID, id)
		assert.NoError(t, err, "running and recent executions survive")
	}
}
