package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/pkg/layout"
)

func pngAsset(t *testing.T, key string, w, h int) layout.Asset {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{30, 60, 90, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return layout.Asset{Key: key, Width: w, Height: h, Format: "PNG", Data: buf.Bytes()}
}

type assets map[string]layout.Asset

func (a assets) Image(ctx context.Context, s coursedoc.Section) (layout.Asset, error) {
	asset, ok := a[s.ID]
	if !ok {
		return layout.Asset{}, errors.New("not found")
	}
	return asset, nil
}

func buildDocument(t *testing.T, c *Context) *layout.Document {
	m, err := c.Measurer()
	require.NoError(t, err)

	cover := coursedoc.NewCover("Économie générale", []byte{1}, "ECO-101", "Niveau 1")
	fig := coursedoc.NewImage("Figure", []byte{1})
	sections := []coursedoc.Section{
		cover,
		coursedoc.NewText("Intro", strings.Repeat("Une introduction à l'économie. ", 30)),
		coursedoc.NewText("Chapitre 1", strings.Repeat("Offre et demande “en pratique”. ", 150)),
		fig,
	}
	src := assets{
		cover.ID: pngAsset(t, cover.ID, 62, 88),
		fig.ID:   pngAsset(t, fig.ID, 40, 30),
	}

	e := layout.NewEngine(m, src, layout.DefaultOptions())
	doc, err := e.Build(context.Background(), sections, "Cours Final")
	require.NoError(t, err)
	require.Empty(t, doc.Skipped)
	return doc
}

func TestMetrics(t *testing.T) {
	m, err := NewMetrics(FontSet{})
	require.NoError(t, err)

	body := layout.Font{SizePt: 11}
	assert.Equal(t, 0.0, m.TextWidth("", body))

	short := m.TextWidth("Hello", body)
	long := m.TextWidth("Hello World", body)
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)

	bold := m.TextWidth("Hello", layout.Font{SizePt: 11, Bold: true})
	assert.GreaterOrEqual(t, bold, short)

	double := m.TextWidth("Hello", layout.Font{SizePt: 22})
	assert.InDelta(t, 2*short, double, 1e-9)
}

func TestToWindows1252(t *testing.T) {
	assert.Equal(t, "plain", toWindows1252("plain"))
	assert.Equal(t, "\xc9conomie", toWindows1252("Économie"))
	assert.Equal(t, "\x93q\x94", toWindows1252("“q”"))
	assert.Equal(t, "a??b", toWindows1252("a日本b"))
}

func TestPDF(t *testing.T) {
	c := DefaultContext()
	doc := buildDocument(t, c)
	require.GreaterOrEqual(t, doc.PageCount(), 4)

	var buf bytes.Buffer
	err := c.PDF(doc, &buf, layout.Skip)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	info, err := Inspect(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, doc.PageCount(), info.Pages)
	assert.NoError(t, Verify(buf.Bytes(), doc.PageCount()))
	assert.Error(t, Verify(buf.Bytes(), doc.PageCount()+1))
}

func TestPDFEmptyDocument(t *testing.T) {
	c := DefaultContext()
	doc := &layout.Document{Title: "Empty", Geometry: layout.A4()}

	var buf bytes.Buffer
	err := c.PDF(doc, &buf, layout.Skip)
	assert.True(t, coursedoc.IsRenderError(err))
	assert.Equal(t, 0, buf.Len())
}

func TestPDFMissingAsset(t *testing.T) {
	doc := &layout.Document{
		Title:    "Broken",
		Geometry: layout.A4(),
		Assets:   map[string]layout.Asset{},
		Pages: []*layout.Page{
			{Number: 1, Kind: layout.ImagePage, Ops: []layout.Op{layout.ImageOp{Key: "missing", W: 10, H: 10}}},
		},
	}

	c := DefaultContext()
	err := c.PDF(doc, &bytes.Buffer{}, layout.Abort)
	assert.True(t, coursedoc.IsRenderError(err))

	// skipped pages stay in the document
	var buf bytes.Buffer
	require.NoError(t, c.PDF(doc, &buf, layout.Skip))
	info, err := Inspect(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
}

func TestInspectInvalid(t *testing.T) {
	_, err := Inspect([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	c := DefaultContext()
	c.DPI = 36
	doc := buildDocument(t, c)

	for n := 1; n <= doc.PageCount(); n++ {
		var buf bytes.Buffer
		require.NoError(t, c.Page(doc, n, &buf))

		img, err := png.Decode(&buf)
		require.NoError(t, err)
		// 210 x 297 mm at 36 dpi
		assert.Equal(t, 298, img.Bounds().Dx())
		assert.Equal(t, 421, img.Bounds().Dy())
	}

	err := c.Page(doc, 0, &bytes.Buffer{})
	assert.True(t, coursedoc.IsValidationError(err))
}

func TestDontPanic(t *testing.T) {
	err := dontPanic(func() {})
	assert.NoError(t, err)

	err = dontPanic(func() {
		panic("boom")
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
