package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/persistence"
	"github.com/bizledger/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingMetrics struct {
	statuses []string
}

func (m *recordingMetrics) RecordReportExecution(_ context.Context, _ uuid.UUID, _ string, status string, _ time.Duration) {
	m.statuses = append(m.statuses, status)
}

type stubExporter struct {
	format ExportFormat
	title  string
}

func (s *stubExporter) Render(_ context.Context, format ExportFormat, title string, _ *report.Result) ([]byte, error) {
	s.format, s.title = format, title
	return []byte("<html></html>"), nil
}

type engineFixture struct {
	db       *gorm.DB
	engine   *Engine
	metrics  *recordingMetrics
	exporter *stubExporter
	tenantID uuid.UUID
	userID   uuid.UUID
	defs     map[report.ReportType]*report.Definition
}

func newEngineFixture(t *testing.T, generators map[report.ReportType]Generator) *engineFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	tenantID := uuid.New()
	defRepo := persistence.NewGormReportDefinitionRepository(db)

	defs := report.SystemDefinitions(tenantID)
	require.NoError(t, defRepo.CreateBatch(context.Background(), tenantID, defs))
	byType := make(map[report.ReportType]*report.Definition, len(defs))
	for _, d := range defs {
		byType[d.ReportType] = d
	}

	if generators == nil {
		generators = DefaultGenerators(persistence.NewGormReportDataRepository(db))
	}
	exporter := &stubExporter{}
	engine := NewEngine(defRepo, persistence.NewGormReportExecutionRepository(db), generators, exporter, nil)
	metrics := &recordingMetrics{}
	engine.SetMetrics(metrics)

	return &engineFixture{
		db:       db,
		engine:   engine,
		metrics:  metrics,
		exporter: exporter,
		tenantID: tenantID,
		userID:   uuid.New(),
		defs:     byType,
	}
}

func (f *engineFixture) history(t *testing.T, rt report.ReportType) []ExecutionResponse {
	t.Helper()
	page, err := f.engine.ListExecutions(context.Background(), f.tenantID, f.defs[rt].ID, shared.DefaultFilter())
	require.NoError(t, err)
	return page.Items
}

func TestEngine_MissingParametersRecordsNothing(t *testing.T) {
	f := newEngineFixture(t, nil)
	def := f.defs[report.TypeSalesSummary]

	_, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, map[string]string{
		"startDate": "2024-01-01",
		"endDate":   "  ",
	})
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeMissingParameters))

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, []string{"endDate"}, domainErr.Details["missing"])

	assert.Empty(t, f.history(t, report.TypeSalesSummary))
	assert.Empty(t, f.metrics.statuses)
}

func TestEngine_ExecuteRecordsSuccess(t *testing.T) {
	f := newEngineFixture(t, nil)
	def := f.defs[report.TypeSalesSummary]

	exec, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, map[string]string{
		"startDate": "2024-01-01",
		"endDate":   "2024-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, string(report.ExecutionSuccess), exec.Status)
	require.NotNil(t, exec.Result)
	assert.Equal(t, "day", exec.Parameters["groupBy"], "default filled in")
	require.NotNil(t, exec.CompletedAt)

	stored, err := f.engine.GetExecution(context.Background(), f.tenantID, exec.ID)
	require.NoError(t, err)
	assert.Equal(t, string(report.ExecutionSuccess), stored.Status)
	assert.Equal(t, f.userID, stored.ExecutedBy)

	history := f.history(t, report.TypeSalesSummary)
	require.Len(t, history, 1)
	assert.Equal(t, []string{"SUCCESS"}, f.metrics.statuses)
}

func TestEngine_InvalidParameterValue(t *testing.T) {
	f := newEngineFixture(t, nil)
	def := f.defs[report.TypeSalesSummary]

	_, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, map[string]string{
		"startDate": "yesterday",
		"endDate":   "2024-01-31",
	})
	assert.True(t, shared.IsCode(err, shared.CodeInvalidInput))
	assert.Empty(t, f.history(t, report.TypeSalesSummary))
}

func TestEngine_ReversedPeriodIsInvalidInput(t *testing.T) {
	f := newEngineFixture(t, nil)
	def := f.defs[report.TypeSalesSummary]

	_, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, map[string]string{
		"startDate": "2024-02-01",
		"endDate":   "2024-01-01",
	})
	assert.True(t, shared.IsCode(err, shared.CodeInvalidInput), "got %v", err)
	assert.Empty(t, f.history(t, report.TypeSalesSummary), "bad input leaves no history")
}

func TestEngine_FailureHidesInternalErrors(t *testing.T) {
	internal := errors.New(`pq: relation "sales" does not exist at host db-internal-7:5432`)
	f := newEngineFixture(t, map[report.ReportType]Generator{
		report.TypeCustomerAnalytics: GeneratorFunc(func(context.Context, uuid.UUID, map[string]string) (*report.Result, error) {
			return nil, internal
		}),
	})
	def := f.defs[report.TypeCustomerAnalytics]

	_, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, nil)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeReportFailed, de.Code)
	assert.NotContains(t, de.Message, "db-internal")
	for _, v := range de.Details {
		assert.NotContains(t, fmt.Sprint(v), "db-internal")
	}
	assert.NotEmpty(t, de.Details["executionId"])

	// the record keeps the cause for operators
	history := f.history(t, report.TypeCustomerAnalytics)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].ErrorMessage, "db-internal-7")
}

func TestEngine_GeneratorInputErrorIsPassedThrough(t *testing.T) {
	f := newEngineFixture(t, map[report.ReportType]Generator{
		report.TypeCustomerAnalytics: GeneratorFunc(func(context.Context, uuid.UUID, map[string]string) (*report.Result, error) {
			return nil, shared.InvalidInput("Parameter 'days' must be a whole number of at least 1")
		}),
	})
	def := f.defs[report.TypeCustomerAnalytics]

	_, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, nil)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeInvalidInput, de.Code)
	assert.Contains(t, de.Message, "days")
	assert.NotEmpty(t, de.Details["executionId"])
}

func TestEngine_GeneratorFailureIsRecorded(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
	}{
		{"error", GeneratorFunc(func(context.Context, uuid.UUID, map[string]string) (*report.Result, error) {
			return nil, errors.New("warehouse offline")
		})},
		{"panic", GeneratorFunc(func(context.Context, uuid.UUID, map[string]string) (*report.Result, error) {
			panic("index out of range")
		})},
		{"nil result", GeneratorFunc(func(context.Context, uuid.UUID, map[string]string) (*report.Result, error) {
			return nil, nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, map[report.ReportType]Generator{report.TypeCustomerAnalytics: tt.gen})
			def := f.defs[report.TypeCustomerAnalytics]

			_, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, nil)
			require.Error(t, err)
			assert.True(t, shared.IsCode(err, shared.CodeReportFailed))

			history := f.history(t, report.TypeCustomerAnalytics)
			require.Len(t, history, 1)
			assert.Equal(t, string(report.ExecutionFailed), history[0].Status)
			assert.NotEmpty(t, history[0].ErrorMessage)
			assert.Nil(t, history[0].Result)
			assert.Equal(t, []string{"FAILED"}, f.metrics.statuses)
		})
	}
}

func TestEngine_UnknownGeneratorFails(t *testing.T) {
	f := newEngineFixture(t, map[report.ReportType]Generator{})
	def := f.defs[report.TypeVendorPerformance]

	_, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, nil)
	assert.True(t, shared.IsCode(err, shared.CodeReportFailed))
}

func TestEngine_OtherTenantCannotSeeExecutions(t *testing.T) {
	f := newEngineFixture(t, nil)
	def := f.defs[report.TypeCustomerAnalytics]
	exec, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, nil)
	require.NoError(t, err)

	other := uuid.New()
	_, err = f.engine.GetExecution(context.Background(), other, exec.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.engine.Execute(context.Background(), other, f.userID, def.ID, nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.engine.ListExecutions(context.Background(), other, def.ID, shared.DefaultFilter())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEngine_ExportExecution(t *testing.T) {
	f := newEngineFixture(t, nil)
	def := f.defs[report.TypeInventorySummary]
	exec, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, nil)
	require.NoError(t, err)

	file, err := f.engine.ExportExecution(context.Background(), f.tenantID, exec.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", file.ContentType)
	assert.Contains(t, file.FileName, "inventory-summary-")
	assert.True(t, len(file.FileName) > len(".html"))
	assert.Equal(t, ExportHTML, f.exporter.format)
	assert.Equal(t, "Inventory Summary", f.exporter.title)

	file, err = f.engine.ExportExecution(context.Background(), f.tenantID, exec.ID, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)

	_, err = f.engine.ExportExecution(context.Background(), f.tenantID, exec.ID, "xlsx")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidInput))
}

func TestEngine_ExportRejectsFailedExecution(t *testing.T) {
	f := newEngineFixture(t, map[report.ReportType]Generator{
		report.TypeCustomerAnalytics: GeneratorFunc(func(context.Context, uuid.UUID, map[string]string) (*report.Result, error) {
			return nil, errors.New("boom")
		}),
	})
	def := f.defs[report.TypeCustomerAnalytics]
	_, err := f.engine.Execute(context.Background(), f.tenantID, f.userID, def.ID, nil)
	require.Error(t, err)

	history := f.history(t, report.TypeCustomerAnalytics)
	require.Len(t, history, 1)
	_, err = f.engine.ExportExecution(context.Background(), f.tenantID, history[0].ID, "html")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidInput))
}

func TestEngine_ExportWithoutExporter(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	engine := NewEngine(
		persistence.NewGormReportDefinitionRepository(db),
		persistence.NewGormReportExecutionRepository(db),
		nil, nil, nil,
	)
	_, err := engine.ExportExecution(context.Background(), uuid.New(), uuid.New(), "pdf")
	assert.ErrorIs(t, err, ErrExportUnavailable)
}
