package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	reportapp "github.com/bizledger/backend/internal/application/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, p Page) (*Document, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
}

func TestReportExporter_HTML(t *testing.T) {
	exporter := NewReportExporter(NewReportTemplate("en"), nil, nil)

	data, err := exporter.Render(context.Background(), reportapp.ExportHTML, "Stock", sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
	assert.NoError(t, exporter.Close())
}

func TestReportExporter_PDFDisabled(t *testing.T) {
	exporter := NewReportExporter(NewReportTemplate("en"), nil, nil)

	_, err := exporter.Render(context.Background(), reportapp.ExportPDF, "Stock", sampleResult())
	assert.ErrorIs(t, err, reportapp.ErrExportUnavailable)
}

func TestReportExporter_PDF(t *testing.T) {
	pdf := new(MockPDFRenderer)
	pdf.On("Render", mock.Anything, mock.MatchedBy(func(p Page) bool {
		return p.Title == "Stock" && strings.Contains(p.HTML, "<h1>Stock</h1>") && !p.Landscape
	})).Return(&Document{Data: []byte("%PDF-1.4"), Pages: 1}, nil)
	pdf.On("Close").Return(nil)

	exporter := NewReportExporter(NewReportTemplate("en"), pdf, nil)
	data, err := exporter.Render(context.Background(), reportapp.ExportPDF, "Stock", sampleResult())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	require.NoError(t, exporter.Close())
	pdf.AssertExpectations(t)
}

func TestReportExporter_PDFFailure(t *testing.T) {
	pdf := new(MockPDFRenderer)
	boom := fmt.Errorf("%w: %w", ErrRenderTimeout, errors.New("deadline"))
	pdf.On("Render", mock.Anything, mock.Anything).Return(nil, boom)

	exporter := NewReportExporter(NewReportTemplate("en"), pdf, nil)
	_, err := exporter.Render(context.Background(), reportapp.ExportPDF, "Stock", sampleResult())
	assert.ErrorIs(t, err, boom)
	assert.True(t, isTimeout(err))
}
