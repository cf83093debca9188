package printing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromeRenderer_Defaults(t *testing.T) {
	r := NewChromeRenderer(ChromeOptions{}, nil)
	defer r.Close()

	assert.Equal(t, defaultRenderTimeout, r.opts.Timeout)
	assert.NotNil(t, r.logger)
	assert.NotNil(t, r.allocCtx)
}

func TestPrintParams(t *testing.T) {
	params := printParams(false)
	assert.InDelta(t, 8.27, params.PaperWidth, 0.01)
	assert.InDelta(t, 11.69, params.PaperHeight, 0.01)
	assert.InDelta(t, 0.47, params.MarginLeft, 0.01)
	assert.True(t, params.PrintBackground)
	assert.False(t, params.Landscape)

	assert.True(t, printParams(true).Landscape)
}

func TestDocument(t *testing.T) {
	t.Run("wraps fragment", func(t *testing.T) {
		doc := document(Page{HTML: "<p>hello</p>", Title: "Q1 <draft>"})
		assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
		assert.Contains(t, doc, "<title>Q1 &lt;draft&gt;</title>")
		assert.Contains(t, doc, "<body><p>hello</p></body>")
	})

	t.Run("keeps full document", func(t *testing.T) {
		in := "<!DOCTYPE html><html><body>x</body></html>"
		assert.Equal(t, in, document(Page{HTML: in}))
	})
}

func TestChromeRenderer_RejectsEmptyPage(t *testing.T) {
	r := &ChromeRenderer{opts: ChromeOptions{Timeout: time.Second}}

	_, err := r.Render(context.Background(), Page{HTML: "   "})
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestCountPages(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, countPages(pdf))
	assert.Equal(t, 1, countPages([]byte("%PDF-1.4")))
}
