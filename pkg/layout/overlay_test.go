package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeEnclosesLines(t *testing.T) {
	e := newTestEngine(nil, Skip)
	box := e.ImageBox(2480, 3508)
	ops := e.Composite(box, Captions{
		Eyebrow:  "MATH-101",
		Title:    "An introduction to linear algebra and its many applications",
		Subtitle: "Niveau 1",
	})

	var panel RectOp
	panels := 0
	lines := 0
	for _, op := range ops {
		switch o := op.(type) {
		case RectOp:
			panel = o
			panels++
			assert.Equal(t, float64(PanelRadius), o.Radius)
			assert.Equal(t, PanelOpacity, o.Opacity)
		case TextOp:
			lines++
			assert.LessOrEqual(t, o.Width, box.W*CaptionWidth+1e-9)
			assert.True(t, panel.Contains(o.X, o.Y), "%q outside panel", o.Text)
			assert.True(t, panel.Contains(o.X+o.Width, o.Y-o.Font.SizeMm()*CapHeight), "%q outside panel", o.Text)
			assert.Equal(t, CaptionColor, o.Color)
		}
	}
	assert.Equal(t, 3, panels)
	// the title wraps
	assert.Greater(t, lines, 3)
}

func TestCompositeSkipsEmptyCaptions(t *testing.T) {
	e := newTestEngine(nil, Skip)
	ops := e.Composite(Box{0, 0, 210, 297}, Captions{Title: "Only"})
	require.Len(t, ops, 2)

	txt, ok := ops[1].(TextOp)
	require.True(t, ok)
	assert.Equal(t, "Only", txt.Text)
	assert.Equal(t, DefaultStyles().Title.SizePt*1.2, txt.Font.SizePt)
}

func TestCompositeCaptionsAreWhite(t *testing.T) {
	e := newTestEngine(nil, Skip)
	ops := e.Composite(Box{0, 0, 210, 297}, Captions{Eyebrow: "MATH-101", Title: "MATHS", Subtitle: "Niveau 1"})

	texts := 0
	for _, op := range ops {
		if o, ok := op.(TextOp); ok {
			texts++
			assert.Equal(t, CaptionColor, o.Color, "%q", o.Text)
		}
	}
	assert.Equal(t, 3, texts)
}

func TestCompositeWrapsTitleOnly(t *testing.T) {
	e := newTestEngine(nil, Skip)
	long := "an eyebrow that is a good deal wider than the narrow box"
	ops := e.Composite(Box{0, 0, 60, 297}, Captions{Eyebrow: long, Title: long})

	// eyebrow panel and line come first
	require.IsType(t, RectOp{}, ops[0])
	require.IsType(t, TextOp{}, ops[1])
	require.IsType(t, RectOp{}, ops[2])
	assert.Equal(t, long, ops[1].(TextOp).Text)

	titleLines := 0
	for _, op := range ops[3:] {
		if _, ok := op.(TextOp); ok {
			titleLines++
		}
	}
	assert.Greater(t, titleLines, 1)
}
