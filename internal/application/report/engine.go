package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReportMetrics receives report run outcomes
type ReportMetrics interface {
	RecordReportExecution(ctx context.Context, tenantID uuid.UUID, reportType, status string, duration time.Duration)
}

type noopReportMetrics struct{}

func (noopReportMetrics) RecordReportExecution(context.Context, uuid.UUID, string, string, time.Duration) {
}

// ExportFormat selects the rendering of an exported execution
type ExportFormat string

const (
	ExportHTML ExportFormat = "html"
	ExportPDF  ExportFormat = "pdf"
)

// ErrExportUnavailable is returned when the requested format cannot be
// produced by this deployment
var ErrExportUnavailable = shared.InvalidInput("This export format is not available")

// Exporter renders a report result as a document
type Exporter interface {
	Render(ctx context.Context, format ExportFormat, title string, result *report.Result) ([]byte, error)
}

// ExportFile is a rendered document ready for download
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Engine runs report definitions and keeps their execution history
type Engine struct {
	defRepo    report.DefinitionRepository
	execRepo   report.ExecutionRepository
	generators map[report.ReportType]Generator
	exporter   Exporter
	metrics    ReportMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewEngine creates a report engine. exporter may be nil, which disables
// exports.
func NewEngine(
	defRepo report.DefinitionRepository,
	execRepo report.ExecutionRepository,
	generators map[report.ReportType]Generator,
	exporter Exporter,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		defRepo:    defRepo,
		execRepo:   execRepo,
		generators: generators,
		exporter:   exporter,
		metrics:    noopReportMetrics{},
		logger:     logger,
		now:        time.Now,
	}
}

// SetMetrics sets the run counters
func (e *Engine) SetMetrics(m ReportMetrics) {
	if m != nil {
		e.metrics = m
	}
}

// Execute runs a definition. Missing required parameters are reported
// before anything is recorded. Otherwise a RUNNING execution is stored and
// finished as SUCCESS or FAILED even if the caller's context is cancelled.
func (e *Engine) Execute(ctx context.Context, tenantID, userID, definitionID uuid.UUID, params map[string]string) (_ *ExecutionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "execute",
		telemetry.AttrTenantID.String(tenantID.String()),
		attribute.String("report.definition_id", definitionID.String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	def, err := e.defRepo.FindByIDForTenant(ctx, tenantID, definitionID)
	if err != nil {
		return nil, err
	}
	if missing := def.MissingParameters(params); len(missing) > 0 {
		return nil, shared.ErrMissingParameters.WithDetails(map[string]any{"missing": missing})
	}
	resolved, err := def.ResolveParameters(params)
	if err != nil {
		return nil, err
	}

	exec := report.StartExecution(tenantID, def.ID, userID, resolved)
	if err := e.execRepo.Create(ctx, tenantID, exec); err != nil {
		return nil, err
	}

	span.SetAttributes(telemetry.AttrReportType.String(string(def.ReportType)))
	var (
		result *report.Result
		runErr error
	)
	labels := telemetry.OperationLabels("report.execute", map[string]string{"report_type": string(def.ReportType)})
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		result, runErr = e.run(ctx, tenantID, def.ReportType, resolved)
	})

	// Record the outcome even when the request was cancelled mid-run.
	saveCtx := context.WithoutCancel(ctx)
	finishedAt := e.now()
	if runErr != nil {
		exec.Fail(runErr.Error(), finishedAt)
	} else {
		exec.Succeed(result, finishedAt)
	}
	if err := e.execRepo.Update(saveCtx, tenantID, exec); err != nil {
		e.logger.Error("failed to store report execution",
			zap.String("execution_id", exec.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	e.metrics.RecordReportExecution(saveCtx, tenantID, string(def.ReportType), string(exec.Status), time.Duration(exec.DurationMs)*time.Millisecond)
	if runErr != nil {
		e.logger.Warn("report execution failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("definition_id", def.ID.String()),
			zap.String("report_type", string(def.ReportType)),
			zap.Error(runErr),
		)
		return nil, failure(runErr, exec.ID)
	}

	e.logger.Info("report executed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("definition_id", def.ID.String()),
		zap.Int64("duration_ms", exec.DurationMs),
	)
	response := ToExecutionResponse(exec)
	return &response, nil
}

// failure is the error returned for a failed run. Raw generator and store
// errors stay in the execution record and the log; callers only see
// messages of domain errors.
func failure(runErr error, executionID uuid.UUID) error {
	var de *shared.DomainError
	if !errors.As(runErr, &de) {
		return shared.ErrReportFailed.WithCause(runErr).WithDetails(map[string]any{
			"executionId": executionID.String(),
			"reason":      "The report could not be generated",
		})
	}
	if de.Code == shared.CodeInvalidInput {
		details := map[string]any{"executionId": executionID.String()}
		for k, v := range de.Details {
			details[k] = v
		}
		return de.WithDetails(details)
	}
	return shared.ErrReportFailed.WithCause(runErr).WithDetails(map[string]any{
		"executionId": executionID.String(),
		"reason":      de.Message,
	})
}

// run dispatches to the generator and turns a panic into an error
func (e *Engine) run(ctx context.Context, tenantID uuid.UUID, rt report.ReportType, params map[string]string) (result *report.Result, err error) {
	gen, ok := e.generators[rt]
	if !ok {
		return nil, fmt.Errorf("no generator for report type %s", rt)
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("report generator panicked", zap.String("report_type", string(rt)), zap.Any("panic", r), zap.Stack("stack"))
			result, err = nil, fmt.Errorf("report generator panicked: %v", r)
		}
	}()
	result, err = gen.Generate(ctx, tenantID, params)
	if err == nil && result == nil {
		err = fmt.Errorf("report generator returned no result")
	}
	return result, err
}

// GetExecution retrieves one execution
func (e *Engine) GetExecution(ctx context.Context, tenantID, executionID uuid.UUID) (*ExecutionResponse, error) {
	exec, err := e.execRepo.FindByIDForTenant(ctx, tenantID, executionID)
	if err != nil {
		return nil, err
	}
	response := ToExecutionResponse(exec)
	return &response, nil
}

// ListExecutions lists the runs of a definition, newest first
func (e *Engine) ListExecutions(ctx context.Context, tenantID, definitionID uuid.UUID, filter shared.Filter) (shared.Paginated[ExecutionResponse], error) {
	if _, err := e.defRepo.FindByIDForTenant(ctx, tenantID, definitionID); err != nil {
		return shared.Paginated[ExecutionResponse]{}, err
	}
	page, err := e.execRepo.FindByDefinition(ctx, tenantID, definitionID, filter)
	if err != nil {
		return shared.Paginated[ExecutionResponse]{}, err
	}
	return shared.MapPaginated(page, func(x report.Execution) ExecutionResponse {
		return ToExecutionResponse(&x)
	}), nil
}

// ExportExecution renders a successful execution as HTML or PDF
func (e *Engine) ExportExecution(ctx context.Context, tenantID, executionID uuid.UUID, format string) (*ExportFile, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(format)))
	if f == "" {
		f = ExportHTML
	}
	if f != ExportHTML && f != ExportPDF {
		return nil, shared.InvalidInput("Export format must be html or pdf")
	}
	if e.exporter == nil {
		return nil, ErrExportUnavailable
	}

	exec, err := e.execRepo.FindByIDForTenant(ctx, tenantID, executionID)
	if err != nil {
		return nil, err
	}
	if exec.Status != report.ExecutionSuccess || exec.Result == nil {
		return nil, shared.InvalidInput("Only successful executions can be exported")
	}

	title := exec.Result.Title
	if def, err := e.defRepo.FindByIDForTenant(ctx, tenantID, exec.ReportDefinitionID); err == nil {
		title = def.Name
	}

	data, err := e.exporter.Render(ctx, f, title, exec.Result)
	if err != nil {
		return nil, err
	}
	file := &ExportFile{
		FileName: fmt.Sprintf("%s-%s.%s", identity.Slugify(title), exec.StartedAt.UTC().Format("20060102-150405"), f),
		Data:     data,
	}
	if f == ExportPDF {
		file.ContentType = "application/pdf"
	} else {
		file.ContentType = "text/html; charset=utf-8"
	}
	return file, nil
}
