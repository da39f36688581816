package main

import (
	"context"
	"fmt"
	"os"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/pkg/summary"
)

type summarizeOptions struct {
	id       string
	provider string
	script   bool
	append   string
}

func doSummarize(ctx context.Context, s settings, src string, opts summarizeOptions) error {
	text, err := readSource(src)
	if err != nil {
		return err
	}

	sum, err := s.summarizer(ctx, opts.provider)
	if err != nil {
		return err
	}
	defer sum.Close()

	fmt.Printf("%v summarize %q\n", ellipsis, src)
	var title string
	var sections []coursedoc.Section
	if opts.script {
		c, err := sum.SummarizeScript(ctx, text)
		if err != nil {
			fmt.Printf("%v Failed to summarize %q: %v\n", crossmark, src, err)
			return err
		}
		title = c.Title
		sections = []coursedoc.Section{c.Section()}
	} else {
		l, err := sum.Summarize(ctx, summary.Request{Text: text})
		if err != nil {
			fmt.Printf("%v Failed to summarize %q: %v\n", crossmark, src, err)
			return err
		}
		title = l.Title
		sections = l.Sections()
	}

	repo := s.storage()
	p := &coursedoc.Project{Title: title}
	id := opts.id
	if opts.append != "" {
		p, err = repo.ReadProject(opts.append)
		if err != nil {
			return err
		}
		id = opts.append
	}
	p.Sections = append(p.Sections, sections...)

	if id == "" {
		id = coursedoc.SanitizeFileName(title)
	}
	if id == "" {
		id = coursedoc.DefaultFileStem
	}

	err = os.MkdirAll(s.cfg.ProjectDir, 0755)
	if err != nil {
		return err
	}
	err = repo.WriteProject(id, p)
	if err != nil {
		return err
	}

	fmt.Printf("%v project %q saved with %d sections.\n", checkmark, id, len(p.Sections))
	return nil
}

func readSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return summary.ExtractText(f, "", path)
}

// summarizer creates a client for the given provider, or the configured
// one. Credentials are read from the environment and the env file.
func (s settings) summarizer(ctx context.Context, provider string) (*summary.Summarizer, error) {
	if s.cfg.Summary.EnvFile != "" {
		err := summary.LoadDotEnv(s.cfg.Summary.EnvFile)
		if err != nil {
			return nil, err
		}
	}

	if provider == "" {
		provider = s.cfg.Summary.Provider
	}
	c, err := summary.FromEnv(summary.Provider(provider))
	if err != nil {
		return nil, err
	}
	if s.cfg.Summary.Model != "" && c.Provider != summary.Azure {
		c.Model = s.cfg.Summary.Model
	}
	if s.cfg.Summary.MaxRetries > 0 {
		c.MaxRetries = uint64(s.cfg.Summary.MaxRetries)
	}

	return summary.New(ctx, c)
}
