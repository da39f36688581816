package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsWords(t *testing.T) {
	ts := NewTypesetter(fixedWidth{})
	f := DefaultStyles().Body.Font()
	content := lorem(2000)

	lines := ts.Wrap(content, f, 170)
	require.True(t, len(lines) > 1)

	var words []string
	for _, l := range lines {
		assert.LessOrEqual(t, l.Width, 170.0)
		assert.Equal(t, l.Width, fixedWidth{}.TextWidth(l.Text, f))
		words = append(words, strings.Fields(l.Text)...)
	}
	assert.Equal(t, strings.Fields(content), words)
	assert.True(t, lines[len(lines)-1].Last)
	assert.False(t, lines[0].Last)
}

func TestWrapGreedy(t *testing.T) {
	ts := NewTypesetter(fixedWidth{})
	f := Font{SizePt: 10}
	// one char is 10 * 25.4/72 * 0.6 = 2.1167mm; 10 chars fit in 22mm
	lines := ts.Wrap("aaaa bbbb cccc dd", f, 22)

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	assert.Equal(t, []string{"aaaa bbbb", "cccc dd"}, texts)
}

func TestWrapLongWord(t *testing.T) {
	ts := NewTypesetter(fixedWidth{})
	f := Font{SizePt: 10}
	lines := ts.Wrap("a verylongwordthatdoesnotfit b", f, 20)

	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].Text)
	assert.Equal(t, "verylongwordthatdoesnotfit", lines[1].Text)
	assert.Greater(t, lines[1].Width, 20.0)
	assert.Equal(t, "b", lines[2].Text)
}

func TestWrapNewlines(t *testing.T) {
	ts := NewTypesetter(fixedWidth{})
	f := Font{SizePt: 10}

	lines := ts.Wrap("first\r\n\nsecond", f, 100)
	require.Len(t, lines, 3)
	assert.Equal(t, "first", lines[0].Text)
	assert.Equal(t, "", lines[1].Text)
	assert.Equal(t, "second", lines[2].Text)
	for _, l := range lines {
		assert.True(t, l.Last)
	}

	lines = ts.Wrap("", f, 100)
	require.Len(t, lines, 1)
	assert.Equal(t, "", lines[0].Text)
}

func TestMeasureHeight(t *testing.T) {
	ts := NewTypesetter(fixedWidth{})
	for _, size := range []float64{9, 11, 14, 18, 28} {
		f := Font{SizePt: size}
		lines, h := ts.Measure(lorem(500), f, 100)
		assert.InDelta(t, float64(len(lines))*size/2.54, h, 1e-9)
	}
}

func TestWordSpacing(t *testing.T) {
	ts := NewTypesetter(fixedWidth{})
	f := Font{SizePt: 10}
	lines := ts.Wrap("aa bb cc dd ee ff gg", f, 30)
	require.True(t, len(lines) > 1)

	first := lines[0]
	ws := ts.WordSpacing(first, 30)
	gaps := float64(strings.Count(first.Text, " "))
	assert.InDelta(t, 30.0, first.Width+gaps*ws, 1e-9)

	last := lines[len(lines)-1]
	assert.Equal(t, 0.0, ts.WordSpacing(last, 30))
	assert.Equal(t, 0.0, ts.WordSpacing(Line{Text: "single", Width: 5}, 30))
}
