// Package layout turns an ordered list of sections into laid out pages.
//
// The result is a Document made of drawing operations with all positions
// resolved. It does not depend on an output format; rendering backends
// supply font metrics through a Measurer and draw the Document afterwards.
package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/imaging"
	"github.com/akeil/coursedoc/internal/logging"
)

// Fixed distances, in mm.
const (
	SectionSpacing = 15
	SectionAdvance = 10
	TitleGap       = 5
	AccentOffset   = 5
	AccentWidth    = 0.5
	BackingPadding = 2
	BackingRadius  = 2
	FooterBaseline = 10
)

// BackingOpacity is the opacity of the panel behind body text.
const BackingOpacity = 0.5

// BackingColor is the fill of the panel behind body text.
var BackingColor = coursedoc.RGB(245, 247, 250)

// Minimum cover resolution in pixels (A4 at 300 dpi).
const (
	CoverMinWidth  = 2480
	CoverMinHeight = 3508
)

// DefaultFooterFormat receives the page number and the page count.
const DefaultFooterFormat = "Page %d of %d"

// Policy decides what happens when a single section fails.
type Policy int

const (
	// Skip logs the failure, records the section in Document.Skipped
	// and continues with the next section.
	Skip Policy = iota
	// Abort stops the layout and returns the error.
	Abort
)

func (p Policy) String() string {
	switch p {
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy reads a policy from "skip" or "abort".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "skip", "":
		return Skip, nil
	case "abort":
		return Abort, nil
	default:
		return Skip, coursedoc.NewValidationError("invalid error policy %q", s)
	}
}

// ImageSource supplies decoded image assets for image sections.
type ImageSource interface {
	Image(ctx context.Context, s coursedoc.Section) (Asset, error)
}

// Options are the fixed parameters of an Engine.
type Options struct {
	Geometry       Geometry
	Styles         Styles
	OnSectionError Policy
	// DecodeTimeout limits the wait for a single image.
	// Zero means no limit.
	DecodeTimeout time.Duration
	FooterFormat  string
}

// DefaultOptions returns A4 geometry, the default styles
// and the Skip policy.
func DefaultOptions() Options {
	return Options{
		Geometry:       A4(),
		Styles:         DefaultStyles(),
		OnSectionError: Skip,
		DecodeTimeout:  10 * time.Second,
		FooterFormat:   DefaultFooterFormat,
	}
}

// Engine lays out sections. An Engine holds no state between calls to
// Build and can be used concurrently.
type Engine struct {
	opts   Options
	ts     Typesetter
	images ImageSource
}

// NewEngine creates an Engine that measures text with m and loads images
// from images.
func NewEngine(m Measurer, images ImageSource, opts Options) *Engine {
	if opts.FooterFormat == "" {
		opts.FooterFormat = DefaultFooterFormat
	}
	return &Engine{
		opts:   opts,
		ts:     NewTypesetter(m),
		images: images,
	}
}

// Options returns the options of this engine.
func (e *Engine) Options() Options {
	return e.opts
}

// Build lays out the sections.
//
// The first image section with a course code becomes the cover page.
// Text sections follow in list order, then every remaining image on a page
// of its own. A page number footer is added to every page.
//
// An empty list results in an EmptyInput error.
func (e *Engine) Build(ctx context.Context, sections []coursedoc.Section, title string) (*Document, error) {
	if len(sections) == 0 {
		return nil, coursedoc.NewEmptyInput()
	}

	parts := coursedoc.Partition(sections)
	doc := &Document{
		Title:    title,
		Geometry: e.opts.Geometry,
		Assets:   make(map[string]Asset),
	}
	var buf PageBuffer

	if parts.Cover != nil {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}
		s := *parts.Cover
		err = e.handle(ctx, doc, s, e.guard(s, func() error {
			return e.layoutCover(ctx, &buf, doc, s)
		}))
		if err != nil {
			return nil, err
		}
	}

	y := e.opts.Geometry.Margin
	for _, s := range parts.Body {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}
		s := s
		err = e.handle(ctx, doc, s, e.guard(s, func() error {
			y = e.layoutText(&buf, s, y)
			return nil
		}))
		if err != nil {
			return nil, err
		}
	}

	for _, s := range parts.Trailing {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}
		s := s
		err = e.handle(ctx, doc, s, e.guard(s, func() error {
			return e.layoutImage(ctx, &buf, doc, s)
		}))
		if err != nil {
			return nil, err
		}
	}

	e.stampFooters(&buf)
	doc.Pages = buf.Pages()
	logging.Debug("Layout %q: %d pages, %d skipped", title, len(doc.Pages), len(doc.Skipped))

	return doc, nil
}

// guard runs a single layout step and turns a panic into a RenderError.
func (e *Engine) guard(s coursedoc.Section, step func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = coursedoc.NewRenderError(fmt.Errorf("%v", r), "layout section %q", s.ID)
		}
	}()
	return step()
}

// handle applies the error policy to the result of a layout step.
func (e *Engine) handle(ctx context.Context, doc *Document, s coursedoc.Section, err error) error {
	if err == nil {
		return nil
	}
	// cancellation of the whole build is never skipped
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if e.opts.OnSectionError == Abort {
		return err
	}

	logging.Warning("Skip section %q (%s): %v", s.Title, s.ID, err)
	doc.Skipped = append(doc.Skipped, Skipped{
		SectionID: s.ID,
		Title:     s.Title,
		Err:       err,
	})
	return nil
}

// loadImage waits for the asset of an image section and registers it
// with the document.
func (e *Engine) loadImage(ctx context.Context, doc *Document, s coursedoc.Section) (Asset, error) {
	if e.images == nil {
		return Asset{}, coursedoc.NewDecodeError(s.ID, fmt.Errorf("no image source"))
	}
	if e.opts.DecodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.DecodeTimeout)
		defer cancel()
	}

	a, err := e.images.Image(ctx, s)
	if err != nil {
		if coursedoc.IsDecodeError(err) {
			return Asset{}, err
		}
		return Asset{}, coursedoc.NewDecodeError(s.ID, err)
	}
	if a.Width <= 0 || a.Height <= 0 {
		return Asset{}, coursedoc.NewDecodeError(s.ID, fmt.Errorf("invalid image size %dx%d", a.Width, a.Height))
	}
	if a.Key == "" {
		a.Key = s.ID
	}
	doc.Assets[a.Key] = a
	return a, nil
}

// ImageBox returns the displayed box for an image of w x h pixels:
// as large as possible within the page, aspect ratio preserved,
// centered horizontally and anchored to the top.
func (e *Engine) ImageBox(w, h int) Box {
	g := e.opts.Geometry
	bw, bh := imaging.Fit(float64(w), float64(h), g.PageWidth, g.PageHeight)
	return Box{
		X: (g.PageWidth - bw) / 2,
		Y: 0,
		W: bw,
		H: bh,
	}
}

func (e *Engine) layoutCover(ctx context.Context, buf *PageBuffer, doc *Document, s coursedoc.Section) error {
	a, err := e.loadImage(ctx, doc, s)
	if err != nil {
		return err
	}
	if a.Width < CoverMinWidth || a.Height < CoverMinHeight {
		logging.Warning("Cover image %dx%d is below the recommended %dx%d pixels", a.Width, a.Height, CoverMinWidth, CoverMinHeight)
	}

	box := e.ImageBox(a.Width, a.Height)
	p := buf.NewPage(CoverPage)
	p.add(ImageOp{Key: a.Key, X: box.X, Y: box.Y, W: box.W, H: box.H})

	c := Captions{
		Eyebrow:  s.CourseCode(),
		Title:    s.Title,
		Subtitle: s.Subtitle(),
	}
	for _, op := range e.Composite(box, c) {
		p.add(op)
	}
	return nil
}

// layoutText draws a text section starting at y and returns the cursor
// position for the next section.
func (e *Engine) layoutText(buf *PageBuffer, s coursedoc.Section, y float64) float64 {
	g := e.opts.Geometry
	st := e.opts.Styles
	width := g.ContentWidth()

	titleFont := st.Heading1.Font()
	bodyFont := st.Body.Font()
	titleLines, titleH := e.ts.Measure(s.Title, titleFont, width)
	bodyLines, bodyH := e.ts.Measure(s.Content, bodyFont, width)
	total := titleH + bodyH + SectionSpacing

	p := buf.Current()
	switch {
	case p == nil || p.Kind != BodyPage:
		p = buf.NewPage(BodyPage)
		y = g.Margin
	case y+total > g.UsableHeight() && y > g.Margin:
		logging.Debug("Page break before section %q at y=%.1f", s.Title, y)
		p = buf.NewPage(BodyPage)
		y = g.Margin
	}

	color := st.Heading1.Color
	if c, ok := s.TitleColor(); ok {
		color = c
	}
	x := g.Margin - AccentOffset
	p.add(LineOp{X1: x, Y1: y, X2: x, Y2: y + titleH + TitleGap, Width: AccentWidth, Color: color})

	lh := LineHeight(titleFont.SizePt)
	for i, l := range titleLines {
		p.add(TextOp{
			Text:  l.Text,
			X:     g.Margin,
			Y:     y + float64(i)*lh,
			Width: l.Width,
			Font:  titleFont,
			Color: color,
		})
	}
	y += titleH + TitleGap

	y = e.layoutBody(buf, bodyLines, bodyFont, y)
	return y + SectionAdvance
}

// layoutBody draws justified body lines starting at y. Lines that would
// start below the usable height continue at the top of a new page.
// Each page fragment gets its own backing panel.
func (e *Engine) layoutBody(buf *PageBuffer, lines []Line, f Font, y float64) float64 {
	g := e.opts.Geometry
	st := e.opts.Styles
	width := g.ContentWidth()
	lh := LineHeight(f.SizePt)

	p := buf.Current()
	start := y
	at := len(p.Ops)
	flush := func() {
		p.insert(at, RectOp{
			X:       g.Margin - BackingPadding,
			Y:       start - BackingPadding,
			W:       width + 2*BackingPadding,
			H:       y - start + 2*BackingPadding,
			Radius:  BackingRadius,
			Fill:    BackingColor,
			Opacity: BackingOpacity,
		})
	}

	for _, l := range lines {
		if y > g.UsableHeight() {
			if y > start {
				flush()
			}
			p = buf.NewPage(BodyPage)
			y = g.Margin
			start = y
			at = 0
		}
		p.add(TextOp{
			Text:        l.Text,
			X:           g.Margin,
			Y:           y,
			Width:       l.Width,
			Font:        f,
			Color:       st.Body.Color,
			WordSpacing: e.ts.WordSpacing(l, width),
		})
		y += lh
	}
	flush()

	return y
}

func (e *Engine) layoutImage(ctx context.Context, buf *PageBuffer, doc *Document, s coursedoc.Section) error {
	a, err := e.loadImage(ctx, doc, s)
	if err != nil {
		return err
	}
	box := e.ImageBox(a.Width, a.Height)
	p := buf.NewPage(ImagePage)
	p.add(ImageOp{Key: a.Key, X: box.X, Y: box.Y, W: box.W, H: box.H})
	return nil
}

// stampFooters adds the page number to every page once the final
// page count is known.
func (e *Engine) stampFooters(buf *PageBuffer) {
	g := e.opts.Geometry
	f := e.opts.Styles.Footer.Font()
	n := buf.Len()
	for _, p := range buf.Pages() {
		text := fmt.Sprintf(e.opts.FooterFormat, p.Number, n)
		w := e.ts.m.TextWidth(text, f)
		p.add(TextOp{
			Text:  text,
			X:     (g.PageWidth - w) / 2,
			Y:     g.PageHeight - FooterBaseline,
			Width: w,
			Font:  f,
			Color: e.opts.Styles.Footer.Color,
		})
	}
}
