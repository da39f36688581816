// Package export produces finished PDF artifacts from sections.
package export

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/fs"
	"github.com/akeil/coursedoc/internal/imaging"
	"github.com/akeil/coursedoc/internal/logging"
	"github.com/akeil/coursedoc/pkg/layout"
	"github.com/akeil/coursedoc/pkg/render"
)

// Extension is the file extension of exported documents.
const Extension = "pdf"

// Stage names a step of an export.
type Stage string

const (
	StageValidate Stage = "validate"
	StageDecode   Stage = "decode"
	StageLayout   Stage = "layout"
	StageRender   Stage = "render"
	StageVerify   Stage = "verify"
	StageDone     Stage = "done"
)

// Event reports the progress of an export.
type Event struct {
	Stage Stage `json:"stage"`
	// Pages is set once the layout is known.
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProgressFunc receives progress events. It is called from the goroutine
// running the export.
type ProgressFunc func(Event)

// Options configure an Exporter.
type Options struct {
	Layout layout.Options
	// MaxImageSide limits the longer side of embedded images, in pixels.
	// Zero keeps images at their original size.
	MaxImageSide int
	// Concurrency is the number of images decoded at once.
	Concurrency int
	// Verify parses the finished PDF and checks the page count.
	Verify bool
	// Cache keeps downscaled images between exports. May be nil.
	Cache coursedoc.Cache
}

// DefaultOptions returns the default export settings.
func DefaultOptions() Options {
	return Options{
		Layout:       layout.DefaultOptions(),
		MaxImageSide: 2480,
		Concurrency:  4,
		Verify:       true,
	}
}

// Exporter turns sections into PDF documents.
// It is safe for concurrent use; every export has its own state.
type Exporter struct {
	opts   Options
	render *render.Context
}

// New creates an Exporter that renders with the given context.
func New(rc *render.Context, opts Options) *Exporter {
	if rc == nil {
		rc = render.DefaultContext()
	}
	return &Exporter{opts: opts, render: rc}
}

// Artifact is a finished document.
type Artifact struct {
	// Name is the file name derived from the title.
	Name    string
	Data    []byte
	Pages   int
	Skipped []layout.Skipped
}

// WriteFile saves the artifact in dir and returns the full path.
// The file appears atomically.
func (a *Artifact) WriteFile(dir string) (string, error) {
	path := filepath.Join(dir, a.Name)
	err := fs.WriteFile(path, a.Data, 0644)
	if err != nil {
		return "", err
	}
	return path, nil
}

// Export lays out and renders the sections.
//
// An empty list results in an EmptyInput error, invalid sections in a
// ValidationError. A failure to produce the document is reported as an
// ExportError. Sections that fail on their own are skipped and listed
// in the artifact.
func (e *Exporter) Export(ctx context.Context, sections []coursedoc.Section, title string) (*Artifact, error) {
	return e.ExportProgress(ctx, sections, title, nil)
}

// ExportProject exports all sections of a project.
func (e *Exporter) ExportProject(ctx context.Context, p *coursedoc.Project) (*Artifact, error) {
	return e.Export(ctx, p.Sections, p.Title)
}

// ExportProgress is like Export and reports progress to fn.
func (e *Exporter) ExportProgress(ctx context.Context, sections []coursedoc.Section, title string, fn ProgressFunc) (*Artifact, error) {
	progress := func(ev Event) {
		if fn != nil {
			fn(ev)
		}
	}

	doc, err := e.layout(ctx, sections, title, progress)
	if err != nil {
		return nil, err
	}

	progress(Event{Stage: StageRender, Pages: doc.PageCount()})
	var buf bytes.Buffer
	err = e.render.PDF(doc, &buf, e.opts.Layout.OnSectionError)
	if err != nil {
		return nil, e.fail(ctx, err)
	}

	if e.opts.Verify {
		progress(Event{Stage: StageVerify, Pages: doc.PageCount()})
		err = render.Verify(buf.Bytes(), doc.PageCount())
		if err != nil {
			return nil, e.fail(ctx, err)
		}
	}

	a := &Artifact{
		Name:    coursedoc.FileName(title, Extension),
		Data:    buf.Bytes(),
		Pages:   doc.PageCount(),
		Skipped: doc.Skipped,
	}
	logging.Info("Exported %q: %d pages, %d bytes, %d skipped", a.Name, a.Pages, len(a.Data), len(a.Skipped))
	progress(Event{Stage: StageDone, Pages: a.Pages, Message: a.Name})

	return a, nil
}

// Layout validates the sections and computes the pages without
// rendering them. Errors are reported as for Export.
func (e *Exporter) Layout(ctx context.Context, sections []coursedoc.Section, title string) (*layout.Document, error) {
	return e.layout(ctx, sections, title, func(Event) {})
}

func (e *Exporter) layout(ctx context.Context, sections []coursedoc.Section, title string, progress ProgressFunc) (*layout.Document, error) {
	progress(Event{Stage: StageValidate})
	if len(sections) == 0 {
		return nil, coursedoc.NewEmptyInput()
	}
	err := coursedoc.Validate(sections)
	if err != nil {
		return nil, err
	}

	m, err := e.render.Measurer()
	if err != nil {
		return nil, coursedoc.NewExportError(err)
	}

	// decoding runs in the background while the layout waits for each image
	progress(Event{Stage: StageDecode})
	dctx, cancel := context.WithCancel(ctx)
	src := &imageSource{
		dec:     imaging.NewDecoder(e.opts.Concurrency),
		maxSide: e.opts.MaxImageSide,
		cache:   e.opts.Cache,
	}
	wait := src.prefetch(dctx, sections)
	defer wait()
	defer cancel()

	progress(Event{Stage: StageLayout})
	engine := layout.NewEngine(m, src, e.opts.Layout)
	doc, err := engine.Build(ctx, sections, title)
	if err != nil {
		return nil, e.fail(ctx, err)
	}
	if doc.PageCount() == 0 {
		return nil, e.fail(ctx, errors.New("no section could be rendered"))
	}
	return doc, nil
}

// fail wraps err as an ExportError. Cancellation is returned unchanged.
func (e *Exporter) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logging.Error("Export failed: %v", err)
	return coursedoc.NewExportError(err)
}
