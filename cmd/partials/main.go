package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kingrea/arbitrary-partials/internal/config"
	"github.com/kingrea/arbitrary-partials/internal/loader"
	"github.com/kingrea/arbitrary-partials/internal/logging"
	"github.com/kingrea/arbitrary-partials/internal/partials"
	"github.com/kingrea/arbitrary-partials/internal/plugin"
	"github.com/kingrea/arbitrary-partials/internal/report"
	"github.com/kingrea/arbitrary-partials/internal/taxa"
	"github.com/kingrea/arbitrary-partials/internal/tip"
	"github.com/kingrea/arbitrary-partials/internal/tui"
)

const usage = `usage: partials [-project DIR] <command> [args]

commands:
  parsers                 list registered element parsers
  validate [FILE...]      parse documents (default: .partials/documents)
  show [FILE...]          summarise every alignment
  view FILE               browse an alignment interactively
  export -taxon T FILE    print one taxon's partials, one site per line`

var errUsage = errors.New(usage)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		die("%v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	out    io.Writer
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("partials", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v\n%s", err, usage)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		return fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitDir(absoluteProject); err != nil {
		return fmt.Errorf("init .partials: %w", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()

	a := &app{cfg: cfg, logger: logger, out: stdout}
	ctx := context.Background()
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "parsers":
		return a.parsers()
	case "validate":
		return a.validate(ctx, cmdArgs)
	case "show":
		return a.show(ctx, cmdArgs)
	case "view":
		return a.view(cmdArgs)
	case "export":
		return a.export(cmdArgs)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func newRegistry(logger *logging.Logger) (*plugin.Registry, error) {
	reg := plugin.NewRegistry(plugin.WithLogger(logger))
	if err := reg.Install(taxa.Plugin{}, partials.Plugin{}); err != nil {
		return nil, err
	}
	return reg, nil
}

// parse runs the registry over one loaded document.
func (a *app) parse(src loader.Source) (*plugin.Store, error) {
	reg, err := newRegistry(a.logger.WithSource(src.Path))
	if err != nil {
		return nil, err
	}
	store, err := reg.ParseDocument(src.Root)
	a.logger.LogDocument(src.Path, src.Elements(), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	return store, nil
}

func (a *app) parsers() error {
	reg, err := newRegistry(a.logger)
	if err != nil {
		return err
	}
	for _, name := range reg.Names() {
		p, _ := reg.Lookup(name)
		fmt.Fprintf(a.out, "%-20s %-16s %s\n", name, p.Returns(), p.Description())
	}
	return nil
}

func (a *app) validate(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		found, err := loader.Discover(a.cfg.DocumentsDir())
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Fprintf(a.out, "no documents in %s\n", a.cfg.DocumentsDir())
			return nil
		}
		paths = found
	}
	results := loader.LoadEach(ctx, paths, a.cfg.Workers())
	failed := 0
	for _, res := range results {
		err := res.Err
		if err != nil {
			a.logger.LogDocument(res.Path, 0, err)
		} else {
			_, err = a.parse(res.Source)
		}
		if err != nil {
			failed++
			fmt.Fprintf(a.out, "FAIL %s: %v\n", res.Path, err)
			continue
		}
		fmt.Fprintf(a.out, "ok   %s (%d elements)\n", res.Path, res.Source.Elements())
	}
	if failed > 0 {
		return fmt.Errorf("validate: %d of %d documents failed", failed, len(results))
	}
	return nil
}

func (a *app) show(ctx context.Context, paths []string) error {
	var (
		sources []loader.Source
		err     error
	)
	if len(paths) == 0 {
		sources, err = loader.LoadDir(ctx, a.cfg.DocumentsDir(), a.cfg.Workers())
	} else {
		sources, err = loader.LoadFiles(ctx, paths, a.cfg.Workers())
	}
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Fprintf(a.out, "no documents in %s\n", a.cfg.DocumentsDir())
		return nil
	}
	for _, src := range sources {
		store, err := a.parse(src)
		if err != nil {
			return err
		}
		models := alignments(store)
		if len(models) == 0 {
			return fmt.Errorf("%s: no %s element", src.Path, partials.ElementName)
		}
		fmt.Fprintf(a.out, "%s\n", src.Path)
		for _, m := range models {
			summary, err := report.Summarize(m, a.cfg.SumTolerance())
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, report.Render(summary))
		}
	}
	return nil
}

func (a *app) view(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	model, err := a.loadAlignment(args[0])
	if err != nil {
		return err
	}
	var opts []tui.Option
	if a.cfg.Project.Log.File {
		opts = append(opts, tui.WithLogFile(a.cfg.LogFilePath()))
	}
	return tui.Run(model, filepath.Base(args[0]), opts...)
}

func (a *app) export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	taxon := fs.String("taxon", "", "taxon index or id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v\n%s", err, usage)
	}
	if fs.NArg() != 1 || strings.TrimSpace(*taxon) == "" {
		return errUsage
	}
	model, err := a.loadAlignment(fs.Arg(0))
	if err != nil {
		return err
	}
	index, err := taxonIndex(model.Taxa(), *taxon)
	if err != nil {
		return err
	}
	if err := tip.CheckTaxon(index, model.TaxonCount()); err != nil {
		return err
	}

	matrix := model.Matrix()
	width, uniform := matrix.Uniform()
	if !uniform {
		// Engines need one state count; fall back to per-site vectors.
		for site, n := 0, matrix.Sites(); site < n; site++ {
			vec, err := matrix.Vector(index, site)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, formatValues(vec))
		}
		return nil
	}
	tips, err := tip.Collect(model, matrix.Sites(), width)
	if err != nil {
		return err
	}
	row := tips.Partials[index]
	for start := 0; start < len(row); start += width {
		fmt.Fprintln(a.out, formatValues(row[start:start+width]))
	}
	return nil
}

// loadAlignment returns the first alignment in a document.
func (a *app) loadAlignment(path string) (*partials.Model, error) {
	src, err := loader.LoadFile(path)
	if err != nil {
		a.logger.LogDocument(path, 0, err)
		return nil, err
	}
	store, err := a.parse(src)
	if err != nil {
		return nil, err
	}
	models := alignments(store)
	if len(models) == 0 {
		return nil, fmt.Errorf("%s: no %s element", path, partials.ElementName)
	}
	return models[0], nil
}

func alignments(store *plugin.Store) []*partials.Model {
	var models []*partials.Model
	for _, obj := range store.Objects() {
		if m, ok := obj.Value.(*partials.Model); ok {
			models = append(models, m)
		}
	}
	return models
}

// taxonIndex resolves a taxon id, falling back to a numeric index.
func taxonIndex(set *taxa.Set, value string) (int, error) {
	if i, ok := set.IndexOf(value); ok {
		return i, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("unknown taxon %q", value)
	}
	return i, nil
}

func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
