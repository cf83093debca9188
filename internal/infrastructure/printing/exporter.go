package printing

import (
	"context"

	reportapp "github.com/bizledger/backend/internal/application/report"
	"github.com/bizledger/backend/internal/domain/report"
	"go.uber.org/zap"
)

// ReportExporter renders report results as HTML, or as PDF when a PDF
// renderer is configured
type ReportExporter struct {
	template *ReportTemplate
	pdf      PDFRenderer
	logger   *zap.Logger
}

// NewReportExporter creates an exporter. pdf may be nil, which makes PDF
// exports unavailable.
func NewReportExporter(tmpl *ReportTemplate, pdf PDFRenderer, logger *zap.Logger) *ReportExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportExporter{template: tmpl, pdf: pdf, logger: logger}
}

// Render implements reportapp.Exporter
func (e *ReportExporter) Render(ctx context.Context, format reportapp.ExportFormat, title string, result *report.Result) ([]byte, error) {
	if format == reportapp.ExportPDF && e.pdf == nil {
		return nil, reportapp.ErrExportUnavailable
	}

	doc, err := e.template.Render(title, result)
	if err != nil {
		return nil, err
	}
	if format != reportapp.ExportPDF {
		return doc, nil
	}

	out, err := e.pdf.Render(ctx, Page{
		HTML:      string(doc),
		Title:     title,
		Landscape: e.template.Wide(result),
	})
	if err != nil {
		if isTimeout(err) {
			e.logger.Warn("Report PDF export timed out", zap.String("title", title), zap.Error(err))
		} else {
			e.logger.Error("Report PDF export failed", zap.String("title", title), zap.Error(err))
		}
		return nil, err
	}
	return out.Data, nil
}

// Close releases the PDF renderer, if any
func (e *ReportExporter) Close() error {
	if e.pdf == nil {
		return nil
	}
	return e.pdf.Close()
}

var _ reportapp.Exporter = (*ReportExporter)(nil)
