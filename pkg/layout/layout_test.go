package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/akeil/coursedoc"
)

// fixedWidth measures every character as 0.6 times the font size.
type fixedWidth struct{}

func (fixedWidth) TextWidth(text string, f Font) float64 {
	return float64(utf8.RuneCountInString(text)) * f.SizeMm() * 0.6
}

// panicky panics when asked to measure a specific word.
type panicky struct {
	word string
}

func (p panicky) TextWidth(text string, f Font) float64 {
	if text == p.word {
		panic("cannot measure " + p.word)
	}
	return fixedWidth{}.TextWidth(text, f)
}

// images is an ImageSource backed by a map of section IDs.
type images map[string]Asset

func (m images) Image(ctx context.Context, s coursedoc.Section) (Asset, error) {
	a, ok := m[s.ID]
	if !ok {
		return Asset{}, errors.New("cannot decode image")
	}
	return a, nil
}

func asset(key string, w, h int) Asset {
	return Asset{Key: key, Width: w, Height: h, Format: "PNG", Data: []byte{1}}
}

var pixel = []byte{0x89, 'P', 'N', 'G'}

func text(id, title, content string) coursedoc.Section {
	s := coursedoc.NewText(title, content)
	s.ID = id
	return s
}

func image(id, title string) coursedoc.Section {
	s := coursedoc.NewImage(title, pixel)
	s.ID = id
	return s
}

func cover(id, title, code, subtitle string) coursedoc.Section {
	s := coursedoc.NewCover(title, pixel, code, subtitle)
	s.ID = id
	return s
}

// lorem returns roughly n characters of words separated by spaces.
func lorem(n int) string {
	words := []string{"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit"}
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(words[i%len(words)])
	}
	return sb.String()
}

func newTestEngine(src ImageSource, policy Policy) *Engine {
	opts := DefaultOptions()
	opts.OnSectionError = policy
	return NewEngine(fixedWidth{}, src, opts)
}

func footer(n, total int) string {
	return fmt.Sprintf(DefaultFooterFormat, n, total)
}

func textOps(p *Page) []TextOp {
	var ops []TextOp
	for _, op := range p.Ops {
		if t, ok := op.(TextOp); ok {
			ops = append(ops, t)
		}
	}
	return ops
}

func rectOps(p *Page) []RectOp {
	var ops []RectOp
	for _, op := range p.Ops {
		if r, ok := op.(RectOp); ok {
			ops = append(ops, r)
		}
	}
	return ops
}

// findText returns the page number and op for the first text op with the
// given content.
func findText(doc *Document, s string) (int, TextOp, bool) {
	for _, p := range doc.Pages {
		for _, t := range textOps(p) {
			if t.Text == s {
				return p.Number, t, true
			}
		}
	}
	return 0, TextOp{}, false
}
