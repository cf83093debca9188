package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultRenderTimeout = 30 * time.Second

// a4 is the sheet every report is printed on, in inches as Chrome expects
var a4 = sheet{width: 210 / 25.4, height: 297 / 25.4, margin: 12 / 25.4}

type sheet struct {
	width, height, margin float64
}

// ChromeOptions configures headless Chrome
type ChromeOptions struct {
	// Timeout bounds one render unless the page sets its own
	Timeout time.Duration
	// ExecPath is the browser binary; empty lets chromedp look it up
	ExecPath string
	// RemoteURL attaches to an already running browser instead of launching one
	RemoteURL string
	// NoSandbox is needed when running as root inside a container
	NoSandbox bool
}

// ChromeRenderer prints pages through the Chrome DevTools protocol. The
// browser process starts on the first render and lives until Close.
type ChromeRenderer struct {
	opts   ChromeOptions
	logger *zap.Logger

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewChromeRenderer prepares a renderer without starting the browser
func NewChromeRenderer(opts ChromeOptions, logger *zap.Logger) *ChromeRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRenderTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ChromeRenderer{opts: opts, logger: logger}
	r.allocCtx, r.cancel = newAllocator(opts)
	return r
}

func newAllocator(opts ChromeOptions) (context.Context, context.CancelFunc) {
	if opts.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
	}
	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if opts.NoSandbox {
		flags = append(flags, chromedp.NoSandbox)
	}
	if opts.ExecPath != "" {
		flags = append(flags, chromedp.ExecPath(opts.ExecPath))
	}
	return chromedp.NewExecAllocator(context.Background(), flags...)
}

// Render prints one page in a fresh tab
func (r *ChromeRenderer) Render(ctx context.Context, p Page) (*Document, error) {
	if strings.TrimSpace(p.HTML) == "" {
		return nil, ErrEmptyDocument
	}
	timeout := r.opts.Timeout
	if p.Timeout > 0 {
		timeout = p.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tab, closeTab := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(r.logger.Sugar().Debugf))
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	started := time.Now()
	var data []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document(p)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			data, _, err = printParams(p.Landscape).Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w after %v: %w", ErrRenderTimeout, timeout, err)
		}
		r.logger.Error("Chrome failed to print report", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: browser returned no bytes", ErrRenderFailed)
	}

	doc := &Document{Data: data, Pages: countPages(data), Duration: time.Since(started)}
	r.logger.Debug("Report printed",
		zap.String("title", p.Title),
		zap.Int("bytes", len(data)),
		zap.Int("pages", doc.Pages),
		zap.Duration("duration", doc.Duration))
	return doc, nil
}

func printParams(landscape bool) *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(a4.width).
		WithPaperHeight(a4.height).
		WithMarginTop(a4.margin).
		WithMarginBottom(a4.margin).
		WithMarginLeft(a4.margin).
		WithMarginRight(a4.margin).
		WithLandscape(landscape)
}

// Close stops the browser
func (r *ChromeRenderer) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// document returns p as a complete HTML document, wrapping fragments
func document(p Page) string {
	head := strings.ToLower(p.HTML[:min(len(p.HTML), 256)])
	if strings.Contains(head, "<!doctype") || strings.Contains(head, "<html") {
		return p.HTML
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if p.Title != "" {
		fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(p.Title))
	}
	b.WriteString("</head><body>")
	b.WriteString(p.HTML)
	b.WriteString("</body></html>")
	return b.String()
}

// countPages counts page objects; "/Type /Pages" is the parent node
func countPages(pdf []byte) int {
	n := bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
	return max(n, 1)
}

var _ PDFRenderer = (*ChromeRenderer)(nil)

// isTimeout reports whether err came from a render that ran out of time
func isTimeout(err error) bool {
	return errors.Is(err, ErrRenderTimeout)
}
