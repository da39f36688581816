package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// Resize creates a copy of the given image, scaled to w x h pixels.
func Resize(i image.Image, w, h int) image.Image {
	size := image.Rect(0, 0, w, h)
	dst := image.NewRGBA(size)
	draw.CatmullRom.Scale(dst, size, i, i.Bounds(), draw.Over, nil)
	return dst
}

// Downscale shrinks the image so that neither side exceeds maxSide pixels,
// preserving the aspect ratio. Smaller images are returned unchanged.
func Downscale(i image.Image, maxSide int) image.Image {
	b := i.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return i
	}

	fw, fh := Fit(float64(w), float64(h), float64(maxSide), float64(maxSide))
	nw := int(math.Max(1, math.Round(fw)))
	nh := int(math.Max(1, math.Round(fh)))
	return Resize(i, nw, nh)
}

// Fit scales a w x h box to the largest size that fits into maxW x maxH,
// preserving the aspect ratio. The width is fitted first; if the
// resulting height overflows, the box is shrunk to maxH.
func Fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	ratio := w / h

	fw := maxW
	fh := fw / ratio
	if fh > maxH {
		fh = maxH
		fw = fh * ratio
	}
	return fw, fh
}

// Encode writes the image in a format the PDF writer can embed.
//
// JPEG sources are written as JPEG, everything else as PNG.
// Returns the encoded bytes and the format name ("JPG" or "PNG").
func Encode(i image.Image, srcFormat string) ([]byte, string, error) {
	var buf bytes.Buffer
	if srcFormat == "jpeg" {
		err := jpeg.Encode(&buf, i, &jpeg.Options{Quality: 85})
		return buf.Bytes(), "JPG", err
	}

	err := png.Encode(&buf, flatten(i))
	return buf.Bytes(), "PNG", err
}

// flatten converts paletted and 16-bit images to 8-bit RGBA.
// The PDF writer cannot embed every PNG variant.
func flatten(i image.Image) image.Image {
	switch i.(type) {
	case *image.RGBA, *image.NRGBA, *image.Gray:
		return i
	}
	b := i.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), i, b.Min, draw.Src)
	return dst
}

// Blank creates a w x h image filled with a single color.
func Blank(w, h int, c color.Color) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return dst
}
