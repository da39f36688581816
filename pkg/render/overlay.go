package render

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/llgcode/draw2d/draw2dpdf"

	"github.com/akeil/coursedoc/internal/logging"
	"github.com/akeil/coursedoc/pkg/layout"
)

// fillRoundedRect paints a translucent panel with rounded corners.
func fillRoundedRect(pdf *gofpdf.Fpdf, r layout.RectOp) {
	pdf.SetAlpha(r.Opacity, "Normal")
	defer pdf.SetAlpha(1, "Normal")

	gc := draw2dpdf.NewGraphicContext(pdf)
	gc.SetFillColor(r.Fill.RGBA())
	draw2dkit.RoundedRectangle(gc, r.X, r.Y, r.X+r.W, r.Y+r.H, 2*r.Radius, 2*r.Radius)
	gc.Fill()
}

// executes the given function in a separate go routine.
// If that panics, this will recover and return the panic as an error.
func dontPanic(f func()) error {
	rv := make(chan error, 1)

	go func() {
		// this will "catch" any panic and send its message to the error channel
		defer func() {
			x := recover()
			if x != nil {
				logging.Warning("Panic occurred (recovered): %v", x)
				rv <- fmt.Errorf("recovered from: %v", x)
				return
			}
			rv <- nil
		}()

		// the actual call that might panic
		f()
	}()

	// wait for the result
	return <-rv
}
