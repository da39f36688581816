package render

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Info describes a PDF file.
type Info struct {
	Pages int
	Size  int
}

// Inspect parses and validates PDF data and reports the page count.
func Inspect(data []byte) (Info, error) {
	conf := pdfcpu.NewDefaultConfiguration()
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return Info{}, err
	}

	err = api.ValidateContext(ctx)
	if err != nil {
		return Info{}, err
	}

	err = ctx.EnsurePageCount()
	if err != nil {
		return Info{}, err
	}

	return Info{
		Pages: ctx.PageCount,
		Size:  len(data),
	}, nil
}

// Verify checks that data is a valid PDF with the expected number of pages.
func Verify(data []byte, pages int) error {
	info, err := Inspect(data)
	if err != nil {
		return err
	}
	if info.Pages != pages {
		return fmt.Errorf("expected %d pages, found %d", pages, info.Pages)
	}
	return nil
}
