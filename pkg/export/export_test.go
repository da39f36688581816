package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/pkg/layout"
	"github.com/akeil/coursedoc/pkg/render"
)

func encodePNG(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newExporter(policy layout.Policy) *Exporter {
	opts := DefaultOptions()
	opts.Layout.OnSectionError = policy
	opts.MaxImageSide = 64
	return New(render.DefaultContext(), opts)
}

func TestExportScenario(t *testing.T) {
	sections := []coursedoc.Section{
		coursedoc.NewCover("MATHS", encodePNG(t, 124, 175), "B1C1", "Niveau 1"),
		coursedoc.NewText("Intro", strings.Repeat("Les nombres entiers. ", 30)),
		coursedoc.NewText("Chap 1", strings.Repeat("Une longue explication du chapitre un. ", 120)),
	}

	var stages []Stage
	a, err := newExporter(layout.Skip).ExportProgress(context.Background(), sections, "Cours Final", func(ev Event) {
		stages = append(stages, ev.Stage)
	})
	require.NoError(t, err)

	assert.Equal(t, "cours_final.pdf", a.Name)
	assert.GreaterOrEqual(t, a.Pages, 3)
	assert.Empty(t, a.Skipped)
	assert.True(t, bytes.HasPrefix(a.Data, []byte("%PDF-")))
	assert.Equal(t, []Stage{StageValidate, StageDecode, StageLayout, StageRender, StageVerify, StageDone}, stages)

	info, err := render.Inspect(a.Data)
	require.NoError(t, err)
	assert.Equal(t, a.Pages, info.Pages)
}

func TestExportEmpty(t *testing.T) {
	a, err := newExporter(layout.Skip).Export(context.Background(), []coursedoc.Section{}, "Empty")
	assert.Nil(t, a)
	assert.True(t, coursedoc.IsEmptyInput(err))
}

func TestExportInvalidSection(t *testing.T) {
	s := coursedoc.NewImage("No data", nil)
	a, err := newExporter(layout.Skip).Export(context.Background(), []coursedoc.Section{s}, "Invalid")
	assert.Nil(t, a)
	assert.True(t, coursedoc.IsValidationError(err))
}

func TestExportSkipsBrokenImage(t *testing.T) {
	broken := coursedoc.NewImage("Broken", []byte("not an image"))
	sections := []coursedoc.Section{
		coursedoc.NewText("Text", "Some text."),
		coursedoc.NewImage("Photo", encodeJPEG(t, 40, 30)),
		broken,
		coursedoc.NewImage("Diagram", encodePNG(t, 30, 40)),
	}

	a, err := newExporter(layout.Skip).Export(context.Background(), sections, "Images")
	require.NoError(t, err)
	assert.Equal(t, 3, a.Pages)
	require.Len(t, a.Skipped, 1)
	assert.Equal(t, broken.ID, a.Skipped[0].SectionID)
	assert.True(t, coursedoc.IsDecodeError(a.Skipped[0].Err))
}

func TestExportSkipsMissingImage(t *testing.T) {
	remote := coursedoc.Section{
		ID:      "img-2",
		Kind:    coursedoc.Image,
		Title:   "Remote",
		Content: "https://example.com/photo.jpg",
	}
	sections := []coursedoc.Section{
		coursedoc.NewText("Intro", "Some text."),
		remote,
	}

	a, err := newExporter(layout.Skip).Export(context.Background(), sections, "Doc")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Pages)
	require.Len(t, a.Skipped, 1)
	assert.Equal(t, "img-2", a.Skipped[0].SectionID)
	assert.True(t, coursedoc.IsDecodeError(a.Skipped[0].Err))

	a, err = newExporter(layout.Abort).Export(context.Background(), sections, "Doc")
	assert.Nil(t, a)
	assert.True(t, coursedoc.IsExportError(err))
	assert.True(t, coursedoc.IsDecodeError(err))
}

func TestExportersShareContext(t *testing.T) {
	rc := render.DefaultContext()
	abortOpts := DefaultOptions()
	abortOpts.Layout.OnSectionError = layout.Abort
	skipOpts := DefaultOptions()
	skipOpts.Layout.OnSectionError = layout.Skip

	abort := New(rc, abortOpts)
	skip := New(rc, skipOpts)

	sections := []coursedoc.Section{
		coursedoc.NewText("Text", "Some text."),
		coursedoc.NewImage("Broken", []byte("not an image")),
	}

	_, err := abort.Export(context.Background(), sections, "Shared")
	assert.True(t, coursedoc.IsExportError(err))

	a, err := skip.Export(context.Background(), sections, "Shared")
	require.NoError(t, err)
	assert.Len(t, a.Skipped, 1)
}

func TestExportAbortOnBrokenImage(t *testing.T) {
	sections := []coursedoc.Section{
		coursedoc.NewText("Text", "Some text."),
		coursedoc.NewImage("Broken", []byte("not an image")),
	}

	a, err := newExporter(layout.Abort).Export(context.Background(), sections, "Images")
	assert.Nil(t, a)
	assert.True(t, coursedoc.IsExportError(err))
	assert.True(t, coursedoc.IsDecodeError(err))
	assert.True(t, strings.HasPrefix(err.Error(), coursedoc.ExportFailedMessage))
}

func TestExportNothingRendered(t *testing.T) {
	sections := []coursedoc.Section{
		coursedoc.NewImage("Broken", []byte("not an image")),
	}

	a, err := newExporter(layout.Skip).Export(context.Background(), sections, "Images")
	assert.Nil(t, a)
	assert.True(t, coursedoc.IsExportError(err))
}

func TestExportDataURL(t *testing.T) {
	s := coursedoc.Section{
		ID:      "img",
		Kind:    coursedoc.Image,
		Title:   "Inline",
		Content: coursedoc.EncodeDataURL("image/png", encodePNG(t, 20, 20)),
	}

	a, err := newExporter(layout.Abort).Export(context.Background(), []coursedoc.Section{s}, "Inline")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Pages)
}

func TestLayout(t *testing.T) {
	sections := []coursedoc.Section{
		coursedoc.NewCover("MATHS", encodePNG(t, 124, 175), "B1C1", "Niveau 1"),
		coursedoc.NewText("Intro", "Les nombres entiers."),
	}

	doc, err := newExporter(layout.Skip).Layout(context.Background(), sections, "Cours")
	require.NoError(t, err)
	require.Equal(t, 2, doc.PageCount())
	assert.Equal(t, layout.CoverPage, doc.Pages[0].Kind)
	assert.Equal(t, layout.BodyPage, doc.Pages[1].Kind)
	assert.Len(t, doc.Assets, 1)

	_, err = newExporter(layout.Skip).Layout(context.Background(), nil, "Cours")
	assert.True(t, coursedoc.IsEmptyInput(err))
}

// memCache counts cache traffic.
type memCache struct {
	entries map[string][]byte
	hits    int
	puts    int
}

func (m *memCache) Get(key string) (io.ReadCloser, error) {
	data, ok := m.entries[key]
	if !ok {
		return nil, coursedoc.NewNotFound("no entry %q", key)
	}
	m.hits++
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memCache) Put(key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.puts++
	m.entries[key] = data
	return nil
}

func (m *memCache) Delete(key string) error {
	delete(m.entries, key)
	return nil
}

func TestExportUsesCache(t *testing.T) {
	cache := &memCache{entries: make(map[string][]byte)}
	opts := DefaultOptions()
	opts.MaxImageSide = 32
	opts.Cache = cache
	e := New(render.DefaultContext(), opts)

	sections := []coursedoc.Section{
		coursedoc.NewImage("Photo", encodeJPEG(t, 80, 60)),
		coursedoc.NewImage("Diagram", encodePNG(t, 60, 80)),
	}

	first, err := e.Export(context.Background(), sections, "Cached")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts)
	assert.Equal(t, 0, cache.hits)

	second, err := e.Export(context.Background(), sections, "Cached")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts)
	assert.Equal(t, 2, cache.hits)
	assert.Equal(t, first.Pages, second.Pages)
}

func TestEmbedFormat(t *testing.T) {
	assert.Equal(t, "JPG", embedFormat(encodeJPEG(t, 4, 4)))
	assert.Equal(t, "PNG", embedFormat(encodePNG(t, 4, 4)))
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := newExporter(layout.Skip).Export(ctx, []coursedoc.Section{
		coursedoc.NewText("Text", "Some text."),
	}, "Cancelled")
	assert.Nil(t, a)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArtifactWriteFile(t *testing.T) {
	dir := t.TempDir()
	a := &Artifact{Name: "cours_final.pdf", Data: []byte("%PDF-1.4")}

	path, err := a.WriteFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cours_final.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, a.Data, data)
}
