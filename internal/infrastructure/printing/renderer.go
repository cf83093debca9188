package printing

import (
	"context"
	"errors"
	"time"
)

// Rendering failures. Errors returned by this package wrap one of these
// together with the underlying cause.
var (
	ErrEmptyDocument = errors.New("document is empty")
	ErrRenderTimeout = errors.New("rendering timed out")
	ErrRenderFailed  = errors.New("rendering failed")
)

// Page is an HTML document to print
type Page struct {
	// HTML is either a full document or a body fragment
	HTML  string
	Title string
	// Landscape prints wide tables across the long edge
	Landscape bool
	// Timeout overrides the renderer default when positive
	Timeout time.Duration
}

// Document is a printed PDF
type Document struct {
	Data     []byte
	Pages    int
	Duration time.Duration
}

// PDFRenderer prints HTML pages to PDF
type PDFRenderer interface {
	Render(ctx context.Context, page Page) (*Document, error)
	Close() error
}
