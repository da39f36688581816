package render

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/imaging"
	"github.com/akeil/coursedoc/internal/logging"
	"github.com/akeil/coursedoc/pkg/layout"
)

type faceKey struct {
	bold bool
	size float64
}

// renderPage paints a single page to a PNG image.
//
// The preview uses TrueType fonts and may differ slightly from the PDF
// where core fonts are used.
func renderPage(c *Context, doc *layout.Document, number int, w io.Writer) error {
	if number < 1 || number > len(doc.Pages) {
		return coursedoc.NewValidationError("page %d out of range [1, %d]", number, len(doc.Pages))
	}
	p := doc.Pages[number-1]

	dpi := c.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	scale := dpi / 25.4 // px per mm
	g := doc.Geometry
	logging.Debug("Render preview for page %d at %.0f dpi", number, dpi)

	dc := gg.NewContext(px(g.PageWidth, scale), px(g.PageHeight, scale))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	faces := make(map[faceKey]font.Face)
	defer func() {
		for _, f := range faces {
			f.Close()
		}
	}()

	for _, op := range p.Ops {
		var err error
		switch o := op.(type) {
		case layout.TextOp:
			err = previewText(c, dc, faces, o, scale, dpi)
		case layout.RectOp:
			dc.SetRGBA255(int(o.Fill.R), int(o.Fill.G), int(o.Fill.B), int(math.Round(o.Opacity*255)))
			dc.DrawRoundedRectangle(o.X*scale, o.Y*scale, o.W*scale, o.H*scale, o.Radius*scale)
			dc.Fill()
		case layout.LineOp:
			dc.SetRGB255(int(o.Color.R), int(o.Color.G), int(o.Color.B))
			dc.SetLineWidth(math.Max(1, o.Width*scale))
			dc.DrawLine(o.X1*scale, o.Y1*scale, o.X2*scale, o.Y2*scale)
			dc.Stroke()
		case layout.ImageOp:
			err = previewImage(dc, doc, o, scale)
		}
		if err != nil {
			return coursedoc.NewRenderError(err, "preview page %d", number)
		}
	}

	return dc.EncodePNG(w)
}

func previewText(c *Context, dc *gg.Context, faces map[faceKey]font.Face, t layout.TextOp, scale, dpi float64) error {
	key := faceKey{t.Font.Bold, t.Font.SizePt}
	face := faces[key]
	if face == nil {
		ttf, err := c.loadTTF(t.Font.Bold)
		if err != nil {
			return err
		}
		face = truetype.NewFace(ttf, &truetype.Options{
			Size: t.Font.SizePt,
			DPI:  dpi,
		})
		faces[key] = face
	}

	dc.SetFontFace(face)
	dc.SetRGB255(int(t.Color.R), int(t.Color.G), int(t.Color.B))

	if t.WordSpacing == 0 {
		dc.DrawString(t.Text, t.X*scale, t.Y*scale)
		return nil
	}

	space, _ := dc.MeasureString(" ")
	x := t.X * scale
	for _, word := range strings.Split(t.Text, " ") {
		dc.DrawString(word, x, t.Y*scale)
		ww, _ := dc.MeasureString(word)
		x += ww + space + t.WordSpacing*scale
	}
	return nil
}

func previewImage(dc *gg.Context, doc *layout.Document, o layout.ImageOp, scale float64) error {
	a, ok := doc.Assets[o.Key]
	if !ok {
		return fmt.Errorf("no asset for image %q", o.Key)
	}
	img, _, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return err
	}

	scaled := imaging.Resize(img, px(o.W, scale), px(o.H, scale))
	dc.DrawImage(scaled, int(math.Round(o.X*scale)), int(math.Round(o.Y*scale)))
	return nil
}

func px(mm, scale float64) int {
	v := int(math.Round(mm * scale))
	if v < 1 {
		return 1
	}
	return v
}
