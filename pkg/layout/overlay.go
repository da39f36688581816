package layout

import (
	"math"

	"github.com/akeil/coursedoc"
)

// Overlay panel parameters.
const (
	PanelPadding = 8
	PanelRadius  = 5
	PanelOpacity = 0.6
	// CaptionWidth is the share of the image width available to captions.
	CaptionWidth = 0.8
	// CapHeight approximates the height of capital letters relative to the
	// font size and is used to center text vertically.
	CapHeight = 0.7
)

var (
	PanelColor   = coursedoc.RGB(0, 0, 0)
	CaptionColor = coursedoc.RGB(255, 255, 255)
)

// Box is a rectangle in page coordinates.
type Box struct {
	X, Y, W, H float64
}

// Captions are the texts shown on top of the cover image.
// Empty fields are not drawn.
type Captions struct {
	Eyebrow  string
	Title    string
	Subtitle string
}

type caption struct {
	text   string
	style  Style
	scale  float64
	anchor float64
	wrap   bool
}

// Composite returns the drawing operations for the captions on top of an
// image displayed in box.
//
// Each caption sits on a translucent dark panel, centered horizontally
// at a fixed fraction of the box height: eyebrow at 15%, title at 45%,
// subtitle at 85%. Captions are white. The title is wrapped to 80% of the
// box width and its panel encloses all wrapped lines; eyebrow and subtitle
// stay on one line.
func (e *Engine) Composite(box Box, c Captions) []Op {
	st := e.opts.Styles
	captions := []caption{
		{c.Eyebrow, st.Heading2, 1.4, 0.15, false},
		{c.Title, st.Title, 1.2, 0.45, true},
		{c.Subtitle, st.Heading1, 1.2, 0.85, false},
	}

	ops := make([]Op, 0)
	for _, cp := range captions {
		if cp.text == "" {
			continue
		}
		ops = append(ops, e.caption(box, cp)...)
	}
	return ops
}

func (e *Engine) caption(box Box, c caption) []Op {
	f := c.style.Font().Scaled(c.scale)
	limit := math.MaxFloat64
	if c.wrap {
		limit = box.W * CaptionWidth
	}
	lines, h := e.ts.Measure(c.text, f, limit)
	w := maxWidth(lines)

	cx := box.X + box.W/2
	top := box.Y + box.H*c.anchor - h/2

	ops := []Op{RectOp{
		X:       cx - w/2 - PanelPadding,
		Y:       top - PanelPadding,
		W:       w + 2*PanelPadding,
		H:       h + 2*PanelPadding,
		Radius:  PanelRadius,
		Fill:    PanelColor,
		Opacity: PanelOpacity,
	}}

	lh := LineHeight(f.SizePt)
	for i, l := range lines {
		mid := top + (float64(i)+0.5)*lh
		ops = append(ops, TextOp{
			Text:  l.Text,
			X:     cx - l.Width/2,
			Y:     mid + f.SizeMm()*CapHeight/2,
			Width: l.Width,
			Font:  f,
			Color: CaptionColor,
		})
	}
	return ops
}
