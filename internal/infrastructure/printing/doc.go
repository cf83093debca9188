// Package printing renders report results as downloadable documents.
//
// HTML is produced with html/template and locale-aware number formatting.
// PDF is produced by printing that HTML in headless Chrome through the
// DevTools protocol; it is optional and disabled unless configured.
//
// Example usage:
//
//	pdf := NewChromeRenderer(ChromeOptions{NoSandbox: true}, logger)
//	defer pdf.Close()
//
//	exporter := NewReportExporter(NewReportTemplate("en"), pdf, logger)
//	data, err := exporter.Render(ctx, reportapp.ExportPDF, "Sales Summary", result)
package printing
