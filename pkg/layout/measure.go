package layout

import (
	"strings"
)

// LineHeightDivisor converts a font size in pt to a line height in mm.
const LineHeightDivisor = 2.54

// LineHeight returns the height of one line of text in mm.
func LineHeight(sizePt float64) float64 {
	return sizePt / LineHeightDivisor
}

// Measurer reports the rendered width of a string, in mm.
// Implementations are provided by the rendering backends.
type Measurer interface {
	TextWidth(text string, f Font) float64
}

// Line is one line of wrapped text.
type Line struct {
	Text  string
	Width float64
	// Last is set for the final line of a paragraph.
	// Such lines are not justified.
	Last bool
}

// Typesetter breaks text into lines.
type Typesetter struct {
	m Measurer
}

// NewTypesetter creates a Typesetter using the given font metrics.
func NewTypesetter(m Measurer) Typesetter {
	return Typesetter{m}
}

// Measure wraps text to maxWidth and returns the lines together with the
// height of the block in mm: lineCount * (fontSizePt / 2.54).
func (t Typesetter) Measure(text string, f Font, maxWidth float64) ([]Line, float64) {
	lines := t.Wrap(text, f, maxWidth)
	return lines, float64(len(lines)) * LineHeight(f.SizePt)
}

// Wrap breaks text into the fewest lines that fit maxWidth, breaking at
// spaces only. Explicit newlines start a new paragraph. A word wider than
// maxWidth is placed on a line of its own and is never split.
//
// Empty text results in a single empty line.
func (t Typesetter) Wrap(text string, f Font, maxWidth float64) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	space := t.m.TextWidth(" ", f)

	lines := make([]Line, 0)
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, Line{Last: true})
			continue
		}

		current := []string{words[0]}
		width := t.m.TextWidth(words[0], f)
		for _, w := range words[1:] {
			ww := t.m.TextWidth(w, f)
			if width+space+ww <= maxWidth {
				current = append(current, w)
				width += space + ww
				continue
			}
			lines = append(lines, t.line(current, f, false))
			current = []string{w}
			width = ww
		}
		lines = append(lines, t.line(current, f, true))
	}

	return lines
}

func (t Typesetter) line(words []string, f Font, last bool) Line {
	s := strings.Join(words, " ")
	return Line{
		Text:  s,
		Width: t.m.TextWidth(s, f),
		Last:  last,
	}
}

// WordSpacing returns the extra space to add to each space character so
// that the line fills width. Last lines and lines without spaces are not
// stretched.
func (t Typesetter) WordSpacing(l Line, width float64) float64 {
	if l.Last {
		return 0
	}
	gaps := strings.Count(l.Text, " ")
	if gaps == 0 || l.Width >= width {
		return 0
	}
	return (width - l.Width) / float64(gaps)
}

func maxWidth(lines []Line) float64 {
	w := 0.0
	for _, l := range lines {
		if l.Width > w {
			w = l.Width
		}
	}
	return w
}
