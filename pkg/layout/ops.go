package layout

import (
	"github.com/akeil/coursedoc"
)

// Op is a single drawing operation on a page.
// Coordinates are in mm with the origin at the top-left corner.
type Op interface {
	isOp()
}

// TextOp draws a single line of text.
type TextOp struct {
	Text string
	// X is the left edge, Y the baseline.
	X, Y  float64
	Width float64
	Font  Font
	Color coursedoc.Color
	// WordSpacing is added to every space character.
	// It is non-zero for justified lines.
	WordSpacing float64
}

// RectOp fills a rectangle with rounded corners.
type RectOp struct {
	X, Y, W, H float64
	Radius     float64
	Fill       coursedoc.Color
	// Opacity is in [0, 1].
	Opacity float64
}

// LineOp strokes a straight line.
type LineOp struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          coursedoc.Color
}

// ImageOp places the asset with the given key.
type ImageOp struct {
	Key        string
	X, Y, W, H float64
}

func (TextOp) isOp()  {}
func (RectOp) isOp()  {}
func (LineOp) isOp()  {}
func (ImageOp) isOp() {}

// Contains tells if the point (x, y) lies within the rectangle.
func (r RectOp) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// PageKind tells which pass created a page.
type PageKind int

const (
	CoverPage PageKind = iota
	BodyPage
	ImagePage
)

func (k PageKind) String() string {
	switch k {
	case CoverPage:
		return "cover"
	case BodyPage:
		return "body"
	case ImagePage:
		return "image"
	default:
		return "unknown"
	}
}

// Page is one laid out page.
type Page struct {
	// Number is 1-based.
	Number int
	Kind   PageKind
	Ops    []Op
}

func (p *Page) add(op Op) {
	p.Ops = append(p.Ops, op)
}

// insert puts op at index i so that it is drawn before all later ops.
func (p *Page) insert(i int, op Op) {
	p.Ops = append(p.Ops, nil)
	copy(p.Ops[i+1:], p.Ops[i:])
	p.Ops[i] = op
}

// Texts returns the text of all text ops in drawing order.
func (p *Page) Texts() []string {
	var s []string
	for _, op := range p.Ops {
		if t, ok := op.(TextOp); ok {
			s = append(s, t.Text)
		}
	}
	return s
}

// Asset is a decoded and re-encoded image referenced by ImageOps.
type Asset struct {
	Key string
	// Width and Height are in pixels.
	Width  int
	Height int
	// Format is "JPG" or "PNG".
	Format string
	Data   []byte
}

// Skipped records a section that was left out of the document.
type Skipped struct {
	SectionID string
	Title     string
	Err       error
}

// Document is the laid out result. It is independent of any output format.
type Document struct {
	Title    string
	Geometry Geometry
	Pages    []*Page
	Assets   map[string]Asset
	Skipped  []Skipped
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Text returns the text of the page with the given 1-based number.
func (d *Document) Text(number int) []string {
	if number < 1 || number > len(d.Pages) {
		return nil
	}
	return d.Pages[number-1].Texts()
}
