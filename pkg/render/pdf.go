package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/logging"
	"github.com/akeil/coursedoc/pkg/layout"
)

const producer = "coursedoc"

func renderPDF(c *Context, doc *layout.Document, w io.Writer, onPageError layout.Policy) error {
	logging.Debug("Render PDF for document %q with %d pages", doc.Title, len(doc.Pages))
	if len(doc.Pages) == 0 {
		return coursedoc.NewRenderError(fmt.Errorf("document has no pages"), "render %q", doc.Title)
	}

	pdf := setupPDF(c, doc)
	if err := pdf.Error(); err != nil {
		return coursedoc.NewRenderError(err, "set up PDF")
	}

	registered := make(map[string]gofpdf.ImageOptions)
	for _, p := range doc.Pages {
		pdf.AddPage()
		err := dontPanic(func() {
			drawPage(c, pdf, doc, p, registered)
		})
		if err != nil {
			if onPageError == layout.Abort {
				return coursedoc.NewRenderError(err, "draw page %d", p.Number)
			}
			logging.Warning("Failed to draw page %d: %v", p.Number, err)
		}
		// gofpdf stops drawing after the first error
		if err := pdf.Error(); err != nil {
			return coursedoc.NewRenderError(err, "draw page %d", p.Number)
		}
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return coursedoc.NewRenderError(err, "write PDF")
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func setupPDF(c *Context, doc *layout.Document) *gofpdf.Fpdf {
	g := doc.Geometry
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})

	pdf.SetMargins(0, 0, 0) // left, top, right
	pdf.SetAutoPageBreak(false, 0)
	c.Fonts.register(pdf)

	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator(c.Creator, true)
	pdf.SetProducer(producer, true)

	return pdf
}

func drawPage(c *Context, pdf *gofpdf.Fpdf, doc *layout.Document, p *layout.Page, registered map[string]gofpdf.ImageOptions) {
	for _, op := range p.Ops {
		switch o := op.(type) {
		case layout.TextOp:
			drawText(c, pdf, o)
		case layout.RectOp:
			fillRoundedRect(pdf, o)
		case layout.LineOp:
			pdf.SetDrawColor(int(o.Color.R), int(o.Color.G), int(o.Color.B))
			pdf.SetLineWidth(o.Width)
			pdf.Line(o.X1, o.Y1, o.X2, o.Y2)
		case layout.ImageOp:
			drawImage(pdf, doc, o, registered)
		default:
			logging.Warning("Unsupported drawing operation %T on page %d", op, p.Number)
		}
	}
}

// drawText writes a single line at its baseline.
// Justified lines are written word by word.
func drawText(c *Context, pdf *gofpdf.Fpdf, t layout.TextOp) {
	c.Fonts.setFont(pdf, t.Font)
	pdf.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))

	if t.WordSpacing == 0 {
		pdf.Text(t.X, t.Y, c.Fonts.encode(t.Text))
		return
	}

	space := pdf.GetStringWidth(" ")
	x := t.X
	for _, word := range strings.Split(t.Text, " ") {
		s := c.Fonts.encode(word)
		pdf.Text(x, t.Y, s)
		x += pdf.GetStringWidth(s) + space + t.WordSpacing
	}
}

func drawImage(pdf *gofpdf.Fpdf, doc *layout.Document, o layout.ImageOp, registered map[string]gofpdf.ImageOptions) {
	opts, ok := registered[o.Key]
	if !ok {
		a, found := doc.Assets[o.Key]
		if !found {
			panic(fmt.Sprintf("no asset for image %q", o.Key))
		}
		opts = gofpdf.ImageOptions{ImageType: a.Format}
		pdf.RegisterImageOptionsReader(o.Key, opts, bytes.NewReader(a.Data))
		registered[o.Key] = opts
	}

	flow := false
	link := 0
	linkStr := ""
	pdf.ImageOptions(o.Key, o.X, o.Y, o.W, o.H, flow, opts, link, linkStr)
}
