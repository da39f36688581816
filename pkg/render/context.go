package render

import (
	"io"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/akeil/coursedoc/internal/logging"
	"github.com/akeil/coursedoc/pkg/layout"
)

// DefaultDPI is the resolution for PNG previews.
const DefaultDPI = 96

// Context holds parameters and cached data for rendering operations.
//
// If multiple documents are rendered, they should use the same Context.
type Context struct {
	Fonts FontSet
	// Creator is written to the PDF metadata.
	Creator string
	// DPI is the resolution for PNG previews.
	DPI float64

	metrics   *Metrics
	metricsMx sync.Mutex
	ttf       map[bool]*truetype.Font
	ttfMx     sync.Mutex
}

// NewContext sets up a new rendering context with the given fonts.
func NewContext(fonts FontSet) *Context {
	return &Context{
		Fonts:   fonts,
		Creator: "coursedoc",
		DPI:     DefaultDPI,
	}
}

// DefaultContext uses the PDF core fonts.
func DefaultContext() *Context {
	return NewContext(FontSet{})
}

// Measurer returns font metrics matching the PDF output of this context.
func (c *Context) Measurer() (layout.Measurer, error) {
	c.metricsMx.Lock()
	defer c.metricsMx.Unlock()
	if c.metrics != nil {
		return c.metrics, nil
	}

	m, err := NewMetrics(c.Fonts)
	if err != nil {
		return nil, err
	}
	c.metrics = m
	return m, nil
}

// PDF renders all pages of a document to a PDF file.
// onPageError decides if a page that fails to draw is skipped or ends
// the rendering.
//
// The resulting PDF document is written to the given writer.
func (c *Context) PDF(doc *layout.Document, w io.Writer, onPageError layout.Policy) error {
	return renderPDF(c, doc, w, onPageError)
}

// Page draws a single page to a PNG and writes it to the given writer.
// Pages are numbered from 1.
func (c *Context) Page(doc *layout.Document, number int, w io.Writer) error {
	return renderPage(c, doc, number, w)
}

// loadTTF returns the TrueType font for previews.
// Configured font files are used if present, the Go fonts otherwise.
func (c *Context) loadTTF(bold bool) (*truetype.Font, error) {
	c.ttfMx.Lock()
	defer c.ttfMx.Unlock()
	if c.ttf == nil {
		c.ttf = make(map[bool]*truetype.Font)
	}
	cached := c.ttf[bold]
	if cached != nil {
		return cached, nil
	}

	data, err := c.ttfData(bold)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}

	c.ttf[bold] = f
	return f, nil
}

func (c *Context) ttfData(bold bool) ([]byte, error) {
	path := c.Fonts.Regular
	if bold && c.Fonts.Bold != "" {
		path = c.Fonts.Bold
	}
	if path != "" {
		logging.Debug("Read font from %q", path)
		return os.ReadFile(path)
	}

	if bold {
		return gobold.TTF, nil
	}
	return goregular.TTF, nil
}
