package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/fs"
	"github.com/akeil/coursedoc/pkg/layout"
	"github.com/akeil/coursedoc/pkg/render"
)

func doPreview(ctx context.Context, s settings, src string, page int, outDir string, dpi float64) error {
	p, err := readProject(s, src)
	if err != nil {
		return err
	}

	rc := s.renderContext()
	rc.DPI = dpi
	e, err := s.exporter(rc)
	if err != nil {
		return err
	}

	doc, err := e.Layout(ctx, p.Sections, p.Title)
	if err != nil {
		return err
	}

	first, last := 1, doc.PageCount()
	if page != 0 {
		if page < 1 || page > last {
			return fmt.Errorf("page %d does not exist, the document has %d pages", page, last)
		}
		first, last = page, page
	}

	if outDir == "" {
		outDir = s.cfg.OutputDir
	}
	err = os.MkdirAll(outDir, 0755)
	if err != nil {
		return err
	}

	stem := coursedoc.SanitizeFileName(p.Title)
	if stem == "" {
		stem = coursedoc.DefaultFileStem
	}
	for n := first; n <= last; n++ {
		path := filepath.Join(outDir, fmt.Sprintf("%s-%03d.png", stem, n))
		err = writePreview(rc, doc, n, path)
		if err != nil {
			fmt.Printf("%v Failed to render page %d: %v\n", crossmark, n, err)
			return err
		}
		fmt.Printf("%v page %d saved as %q.\n", checkmark, n, path)
	}
	return nil
}

func writePreview(rc *render.Context, doc *layout.Document, n int, path string) error {
	var buf bytes.Buffer
	err := rc.Page(doc, n, &buf)
	if err != nil {
		return err
	}
	return fs.WriteFile(path, buf.Bytes(), 0644)
}
