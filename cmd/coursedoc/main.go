package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ridge/must/v2"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/config"
	"github.com/akeil/coursedoc/pkg/export"
	"github.com/akeil/coursedoc/pkg/layout"
	"github.com/akeil/coursedoc/pkg/publish"
	"github.com/akeil/coursedoc/pkg/render"
)

const (
	checkmark = "\u2713"
	crossmark = "\u2717"
	ellipsis  = "\u2026"
)

func main() {
	app := kingpin.New("coursedoc", "Course document generator")
	app.HelpFlag.Short('h')
	var (
		cfgPath  = app.Flag("config", "Path to the config file").Short('c').String()
		logLevel = app.Flag("log-level", "Log level (debug, info, warning, error, none)").String()
	)

	ls := app.Command("ls", "List projects").Default()
	var (
		match = ls.Arg("match", "Title must match this").String()
	)

	exp := app.Command("export", "Export one or more projects as PDF")
	var (
		expSrc      = exp.Arg("project", "Project IDs or project files").Required().Strings()
		expOut      = exp.Flag("output", "Output directory").Short('o').String()
		expSelected = exp.Flag("selected", "Export only selected sections").Short('s').Bool()
		expColor    = exp.Flag("title-color", "Heading color for text sections, e.g. #1f4e79").String()
		expBucket   = exp.Flag("bucket", "Upload to this Cloud Storage bucket").String()
	)

	preview := app.Command("preview", "Render pages of a project as PNG")
	var (
		pvSrc  = preview.Arg("project", "Project ID or project file").Required().String()
		pvPage = preview.Flag("page", "Page number, all pages if not set").Short('p').Int()
		pvOut  = preview.Flag("output", "Output directory").Short('o').String()
		pvDPI  = preview.Flag("dpi", "Resolution").Default("96").Float64()
	)

	inspect := app.Command("inspect", "Show page count and size of PDF files")
	var (
		inPaths = inspect.Arg("file", "PDF files").Required().ExistingFiles()
	)

	sum := app.Command("summarize", "Create a project from a text or HTML document")
	var (
		sumSrc      = sum.Arg("source", "Text or HTML file").Required().ExistingFile()
		sumID       = sum.Flag("id", "Project ID, derived from the title if not set").String()
		sumProvider = sum.Flag("provider", "Summary provider (azure, openai, gemini)").String()
		sumScript   = sum.Flag("script", "Source is a video script; create a single section").Bool()
		sumAppend   = sum.Flag("append", "Append to this existing project").String()
	)

	serve := app.Command("serve", "Run the HTTP server")
	var (
		listen = serve.Flag("listen", "Listen address").Short('l').String()
	)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg := must.OK1(config.Load(*cfgPath))
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	coursedoc.SetLogLevel(cfg.LogLevel)
	s := settings{cfg}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "ls":
		err = doLs(s, *match)
	case "export":
		opts := exportOptions{
			outDir:     *expOut,
			selected:   *expSelected,
			titleColor: *expColor,
			bucket:     *expBucket,
		}
		err = doExport(ctx, s, *expSrc, opts)
	case "preview":
		err = doPreview(ctx, s, *pvSrc, *pvPage, *pvOut, *pvDPI)
	case "inspect":
		err = doInspect(*inPaths)
	case "summarize":
		opts := summarizeOptions{
			id:       *sumID,
			provider: *sumProvider,
			script:   *sumScript,
			append:   *sumAppend,
		}
		err = doSummarize(ctx, s, *sumSrc, opts)
	case "serve":
		err = doServe(ctx, s, *listen)
	default:
		err = fmt.Errorf("unknown command: %q", command)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// common ---------------------------------------------------------------------

type settings struct {
	cfg *config.Config
}

func (s settings) storage() coursedoc.Storage {
	return coursedoc.NewFilesystemStorage(s.cfg.ProjectDir)
}

func (s settings) renderContext() *render.Context {
	return render.NewContext(render.FontSet{
		Regular: s.cfg.Fonts.Regular,
		Bold:    s.cfg.Fonts.Bold,
	})
}

func (s settings) exportOptions() (export.Options, error) {
	opts := export.DefaultOptions()
	opts.MaxImageSide = s.cfg.Export.MaxImageSide
	opts.Concurrency = s.cfg.Export.Concurrency
	opts.Verify = s.cfg.Export.Verify
	if s.cfg.CacheDir != "" {
		opts.Cache = coursedoc.NewFilesystemCache(filepath.Join(s.cfg.CacheDir, "images"))
	}

	policy, err := layout.ParsePolicy(s.cfg.Export.OnError)
	if err != nil {
		return opts, err
	}
	opts.Layout.OnSectionError = policy

	timeout, err := s.cfg.DecodeTimeout()
	if err != nil {
		return opts, err
	}
	if timeout > 0 {
		opts.Layout.DecodeTimeout = timeout
	}
	if s.cfg.Export.FooterFormat != "" {
		opts.Layout.FooterFormat = s.cfg.Export.FooterFormat
	}
	return opts, nil
}

func (s settings) exporter(rc *render.Context) (*export.Exporter, error) {
	opts, err := s.exportOptions()
	if err != nil {
		return nil, err
	}
	return export.New(rc, opts), nil
}

// sink returns the destination for exported documents.
// A bucket takes precedence over the output directory.
func (s settings) sink(ctx context.Context, outDir, bucket string) (publish.Sink, func() error, error) {
	if bucket == "" {
		bucket = s.cfg.Publish.Bucket
	}
	if bucket != "" {
		g, err := publish.NewGCSSink(ctx, bucket, s.cfg.Publish.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	}

	if outDir == "" {
		outDir = s.cfg.OutputDir
	}
	return publish.NewDirSink(outDir), func() error { return nil }, nil
}

// readProject loads a project by ID from the project directory, or from
// a file if src names a JSON file.
func readProject(s settings, src string) (*coursedoc.Project, error) {
	if filepath.Ext(src) == ".json" {
		dir, file := filepath.Split(src)
		if dir == "" {
			dir = "."
		}
		return coursedoc.NewFilesystemStorage(dir).ReadProject(strings.TrimSuffix(file, ".json"))
	}
	return s.storage().ReadProject(src)
}
