package layout

import (
	"github.com/akeil/coursedoc"
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 72 / 25.4
)

// Weight is the font weight of a style preset.
type Weight int

const (
	Normal Weight = iota
	Bold
)

// Font identifies the font used to measure and draw a run of text.
type Font struct {
	SizePt float64
	Bold   bool
}

// SizeMm returns the font size in millimetres.
func (f Font) SizeMm() float64 {
	return f.SizePt * PtToMm
}

// Scaled returns a copy of the font with the size multiplied by factor.
func (f Font) Scaled(factor float64) Font {
	f.SizePt *= factor
	return f
}

// Style is a named text preset.
type Style struct {
	Name   string
	SizePt float64
	Weight Weight
	Color  coursedoc.Color
}

// Font returns the font for this style.
func (s Style) Font() Font {
	return Font{SizePt: s.SizePt, Bold: s.Weight == Bold}
}

// Styles is the fixed table of text presets.
type Styles struct {
	Title    Style
	Heading1 Style
	Heading2 Style
	Body     Style
	Footer   Style
}

// DefaultStyles returns the standard presets.
func DefaultStyles() Styles {
	return Styles{
		Title:    Style{"title", 28, Bold, coursedoc.RGB(0, 51, 153)},
		Heading1: Style{"heading1", 18, Bold, coursedoc.RGB(0, 51, 153)},
		Heading2: Style{"heading2", 14, Bold, coursedoc.RGB(51, 51, 51)},
		Body:     Style{"body", 11, Normal, coursedoc.RGB(0, 0, 0)},
		Footer:   Style{"footer", 9, Normal, coursedoc.RGB(128, 128, 128)},
	}
}

// Geometry describes the page format. All values are in mm.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	Margin       float64
	FooterHeight float64
}

// A4 is an ISO A4 portrait page with 20mm margins and a 15mm footer band.
func A4() Geometry {
	return Geometry{
		PageWidth:    210,
		PageHeight:   297,
		Margin:       20,
		FooterHeight: 15,
	}
}

// ContentWidth is the page width minus left and right margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// UsableHeight is the lowest y position available for body content:
// page height minus top margin minus the footer band.
func (g Geometry) UsableHeight() float64 {
	return g.PageHeight - g.Margin - g.FooterHeight
}
