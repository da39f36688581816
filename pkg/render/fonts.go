package render

import (
	"strings"
	"sync"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/akeil/coursedoc/pkg/layout"
)

const (
	coreFamily = "Helvetica"
	utf8Family = "Body"
)

// FontSet selects the fonts used for PDF output.
//
// Without font files the PDF core font Helvetica is used. Core fonts only
// cover the Windows-1252 character set; other characters are replaced
// with "?". With a TrueType file for Regular (and optionally Bold), text
// is embedded as UTF-8.
type FontSet struct {
	Regular string
	Bold    string
}

func (fs FontSet) isUTF8() bool {
	return fs.Regular != ""
}

func (fs FontSet) family() string {
	if fs.isUTF8() {
		return utf8Family
	}
	return coreFamily
}

func (fs FontSet) register(pdf *gofpdf.Fpdf) {
	if !fs.isUTF8() {
		return
	}
	bold := fs.Bold
	if bold == "" {
		bold = fs.Regular
	}
	pdf.AddUTF8Font(utf8Family, "", fs.Regular)
	pdf.AddUTF8Font(utf8Family, "B", bold)
}

func (fs FontSet) setFont(pdf *gofpdf.Fpdf, f layout.Font) {
	style := ""
	if f.Bold {
		style = "B"
	}
	pdf.SetFont(fs.family(), style, f.SizePt)
}

func (fs FontSet) encode(s string) string {
	if fs.isUTF8() {
		return s
	}
	return toWindows1252(s)
}

// toWindows1252 converts UTF-8 text to the single byte encoding
// expected by the PDF core fonts.
func toWindows1252(s string) string {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	out, err := enc.String(s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if r > 0x7f {
				return '?'
			}
			return r
		}, s)
	}
	return strings.ReplaceAll(out, string(rune(encoding.ASCIISub)), "?")
}

// Metrics measures text with the same fonts that are used for PDF output.
// It implements layout.Measurer and is safe for concurrent use.
type Metrics struct {
	fonts FontSet
	pdf   *gofpdf.Fpdf
	mx    sync.Mutex
}

// NewMetrics loads the fonts from fs.
func NewMetrics(fs FontSet) (*Metrics, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	fs.register(pdf)
	fs.setFont(pdf, layout.Font{SizePt: 11})
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return &Metrics{fonts: fs, pdf: pdf}, nil
}

// TextWidth returns the width of text in mm.
func (m *Metrics) TextWidth(text string, f layout.Font) float64 {
	m.mx.Lock()
	defer m.mx.Unlock()

	m.fonts.setFont(m.pdf, f)
	return m.pdf.GetStringWidth(m.fonts.encode(text))
}
