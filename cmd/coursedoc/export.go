package main

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/pkg/export"
	"github.com/akeil/coursedoc/pkg/publish"
)

type exportOptions struct {
	outDir     string
	selected   bool
	titleColor string
	bucket     string
}

func doExport(ctx context.Context, s settings, src []string, opts exportOptions) error {
	var filters []coursedoc.SectionFilter
	if opts.selected {
		filters = append(filters, coursedoc.IsSelected)
	}

	var color *coursedoc.Color
	if opts.titleColor != "" {
		c, err := coursedoc.ParseColor(opts.titleColor)
		if err != nil {
			return err
		}
		color = &c
	}

	e, err := s.exporter(s.renderContext())
	if err != nil {
		return err
	}

	sink, closeSink, err := s.sink(ctx, opts.outDir, opts.bucket)
	if err != nil {
		return err
	}
	defer closeSink()

	group, gctx := errgroup.WithContext(ctx)
	for _, name := range expandSrc(src) {
		name := name // scope
		group.Go(func() error {
			return exportProject(gctx, s, e, sink, name, filters, color)
		})
	}
	return group.Wait()
}

func exportProject(ctx context.Context, s settings, e *export.Exporter, sink publish.Sink, src string, filters []coursedoc.SectionFilter, color *coursedoc.Color) error {
	fmt.Printf("%v read %q\n", ellipsis, src)
	p, err := readProject(s, src)
	if err != nil {
		fmt.Printf("%v Failed to read %q: %v\n", crossmark, src, err)
		return err
	}

	sections := coursedoc.Filter(p.Sections, filters...)
	if color != nil {
		sections = coursedoc.ApplyTitleColor(sections, *color)
	}

	fmt.Printf("%v render %q\n", ellipsis, p.Title)
	a, err := e.Export(ctx, sections, p.Title)
	if err != nil {
		fmt.Printf("%v Failed to render %q: %v\n", crossmark, p.Title, err)
		return err
	}
	for _, sk := range a.Skipped {
		fmt.Printf("%v skipped section %q: %v\n", crossmark, sk.Title, sk.Err)
	}

	location, err := sink.Publish(ctx, a.Name, a.Data)
	if err != nil {
		fmt.Printf("%v Failed to save %q: %v\n", crossmark, a.Name, err)
		return err
	}

	fmt.Printf("%v document %q saved as %q (%d pages).\n", checkmark, p.Title, location, a.Pages)
	return nil
}

// expandSrc expands glob patterns in project file arguments.
// Arguments that match nothing are kept, they may be project IDs.
func expandSrc(src []string) []string {
	result := make([]string, 0, len(src))
	for _, s := range src {
		matches, err := filepath.Glob(s)
		if err != nil || len(matches) == 0 {
			result = append(result, s)
			continue
		}
		result = append(result, matches...)
	}
	return result
}
