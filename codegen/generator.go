// Package codegen drives Rust code generation from kRPC service definitions.
//
// # Architecture
//
// Generation runs in three layers:
//  1. idl loads a service file into an immutable model
//  2. codegen/rust resolves types, extracts dependencies and partitions
//     procedures into a per-service rendering context
//  3. codegen/render executes templates over that context
//
// The Generator ties them together: it renders every service of every
// document, writes one module per service and, when everything succeeded,
// a module index.
//
// # Failure isolation
//
// A document that cannot be loaded is skipped as a whole. A service whose
// types cannot be resolved is skipped alone; the other services of the same
// document are still written. A failed service never leaves a file behind:
// outputs are written to a temp file and renamed into place.
//
// # Determinism
//
// Services are processed in parallel but each one owns its output path, and
// all ordering in the rendered text comes from sorted containers, so the
// output is byte-identical from run to run.
package codegen

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Cahu/krpc-mars-terraformer/codegen/render"
	"github.com/Cahu/krpc-mars-terraformer/codegen/rust"
	"github.com/Cahu/krpc-mars-terraformer/config"
	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/idl"
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
	"github.com/Cahu/krpc-mars-terraformer/logger"
	"github.com/Cahu/krpc-mars-terraformer/version"
)

// DefaultOutputExtension is used when Options.Extension is empty
const DefaultOutputExtension = ".rs"

// IndexName is the base name of the module index
const IndexName = "mod"

// Options configures a Generator
type Options struct {
	// OutputDir receives one module per service
	OutputDir string
	// Extension of generated files, with the leading dot
	Extension string
	// Index writes a module index listing every generated module
	Index bool
	// Jobs bounds the services rendered in parallel; 0 means one per CPU
	Jobs int
	// TemplatesDir overrides embedded templates by name
	TemplatesDir string
	// Naming converts service and parameter names; defaults to snake_case
	Naming rust.Namer
	// Version is stamped into generated headers
	Version string
}

// OptionsFromConfig maps loaded configuration onto generator options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutputDir:    cfg.Output.Dir,
		Extension:    cfg.Output.Extension,
		Index:        cfg.Output.Index,
		Jobs:         cfg.Generate.Jobs,
		TemplatesDir: cfg.Templates.Dir,
	}
}

// Generator renders and writes service modules
type Generator struct {
	opts     Options
	renderer *render.Renderer
	log      *zap.SugaredLogger
}

// New creates a Generator, parsing its templates up front
func New(opts Options) (*Generator, error) {
	if opts.Naming == nil {
		opts.Naming = util.ToSnakeCase
	}
	if opts.Extension == "" {
		opts.Extension = DefaultOutputExtension
	}
	if opts.Version == "" {
		opts.Version = version.Get().Short()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}

	r, err := render.New(render.Options{
		Naming:  opts.Naming,
		Dir:     opts.TemplatesDir,
		Version: opts.Version,
	})
	if err != nil {
		return nil, err
	}

	return &Generator{
		opts:     opts,
		renderer: r,
		log:      logger.ComponentLogger("codegen"),
	}, nil
}

// Options returns the effective options
func (g *Generator) Options() Options {
	return g.opts
}

// Module returns the module name of a service
func (g *Generator) Module(service string) string {
	return g.opts.Naming(service)
}

// OutputPath returns where a service's module is written
func (g *Generator) OutputPath(service string) string {
	return filepath.Join(g.opts.OutputDir, g.Module(service)+g.opts.Extension)
}

// IndexPath returns where the module index is written
func (g *Generator) IndexPath() string {
	return filepath.Join(g.opts.OutputDir, IndexName+g.opts.Extension)
}

// Context builds the rendering context of svc. source is the service file
// it came from and only appears in the generated header.
func (g *Generator) Context(svc *idl.Service, source string) (*rust.ServiceContext, error) {
	ctx, err := rust.BuildContext(svc, g.opts.Naming)
	if err != nil {
		return nil, errors.Wrapf(err, "service %s", svc.Name)
	}
	if source != "" {
		ctx.Source = filepath.Base(source)
	}
	return ctx, nil
}

// RenderService renders svc in memory
func (g *Generator) RenderService(svc *idl.Service, source string) ([]byte, error) {
	ctx, err := g.Context(svc, source)
	if err != nil {
		return nil, err
	}
	out, err := g.renderer.Service(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "service %s", svc.Name)
	}
	return out, nil
}

// RenderIndex renders the module index for modules
func (g *Generator) RenderIndex(modules []string) ([]byte, error) {
	return g.renderer.Index(modules)
}

// GenerateFile loads one service file and generates its services. A file
// that cannot be loaded fails the call.
func (g *Generator) GenerateFile(ctx context.Context, path string) (*Report, error) {
	file, err := idl.Load(path)
	if err != nil {
		return nil, err
	}
	return g.GenerateDocuments(ctx, file)
}

// Generate loads and generates every path. Documents that fail to load are
// recorded in the report and skipped. The returned error combines every
// failure; the report is returned in both cases unless ctx was cancelled.
func (g *Generator) Generate(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()
	report := &Report{}
	var files []*idl.ServiceFile

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := idl.Load(path)
		if err != nil {
			g.log.Errorw("Failed to load service file",
				logger.FieldFile, path,
				logger.FieldError, err)
			report.fail(path, "", err)
			continue
		}
		files = append(files, file)
	}

	if err := g.generate(ctx, files, report); err != nil {
		return nil, err
	}
	report.Documents = len(paths)
	report.Duration = time.Since(start)
	return report, report.Err()
}

// GenerateDocuments generates every service of already loaded documents
func (g *Generator) GenerateDocuments(ctx context.Context, files ...*idl.ServiceFile) (*Report, error) {
	start := time.Now()
	report := &Report{}
	if err := g.generate(ctx, files, report); err != nil {
		return nil, err
	}
	report.Documents = len(files)
	report.Duration = time.Since(start)
	return report, report.Err()
}

// job is one service to render
type job struct {
	source string
	svc    *idl.Service
	module string
	path   string
}

func (g *Generator) generate(ctx context.Context, files []*idl.ServiceFile, report *Report) error {
	jobs := g.plan(files, report)
	report.Services = len(jobs) + countServiceFailures(report)

	if len(jobs) > 0 {
		if err := os.MkdirAll(g.opts.OutputDir, config.DefaultDirPermissions); err != nil {
			return errors.WrapIO(err, "failed to create output directory %s", g.opts.OutputDir)
		}
	}

	g.log.Debugw("Generating services",
		logger.FieldCount, len(jobs),
		logger.FieldJobs, g.opts.Jobs,
		logger.FieldDir, g.opts.OutputDir)

	// indexed like jobs so workers never share a slot
	results := make([]error, len(jobs))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, min(g.opts.Jobs, len(jobs))))
	for i, j := range jobs {
		eg.Go(func() error {
			select {
			case <-egctx.Done():
				return egctx.Err()
			default:
			}
			// a failed service is recorded; only cancellation stops the group
			results[i] = g.run(j)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, j := range jobs {
		if results[i] != nil {
			report.fail(j.source, j.svc.Name, results[i])
			continue
		}
		report.Written = append(report.Written, Written{Service: j.svc.Name, Module: j.module, Path: j.path})
	}
	report.sort()

	if g.opts.Index && len(report.Written) > 0 {
		if err := g.writeIndex(report); err != nil {
			return err
		}
	}

	g.log.Infow("Generation finished",
		logger.FieldCount, len(report.Written),
		logger.FieldFailed, len(report.Failed))
	return nil
}

// plan lists the jobs of files in document then service-name order. Two
// services mapping to the same module would overwrite each other; the later
// one fails instead.
func (g *Generator) plan(files []*idl.ServiceFile, report *Report) []job {
	var jobs []job
	owner := make(map[string]string)
	for _, file := range files {
		for _, name := range file.ServiceNames() {
			module := g.Module(name)
			if prev, taken := owner[module]; taken {
				report.fail(file.Path, name, errors.WithHint(
					errors.Newf("module %s is already generated for service %s", module, prev),
					"service names must stay distinct after case conversion",
				))
				continue
			}
			owner[module] = name
			jobs = append(jobs, job{
				source: file.Path,
				svc:    file.Services[name],
				module: module,
				path:   g.OutputPath(name),
			})
		}
	}
	return jobs
}

func countServiceFailures(r *Report) int {
	n := 0
	for _, f := range r.Failed {
		if f.Service != "" {
			n++
		}
	}
	return n
}

func (g *Generator) run(j job) error {
	start := time.Now()
	log := logger.ChildLogger(g.log, logger.FieldService, j.svc.Name)

	out, err := g.RenderService(j.svc, j.source)
	if err != nil {
		log.Errorw("Service skipped",
			logger.FieldFile, j.source,
			logger.FieldError, err)
		return err
	}
	if err := writeFileAtomic(j.path, out, config.DefaultFilePermissions); err != nil {
		log.Errorw("Failed to write module",
			logger.FieldOutput, j.path,
			logger.FieldError, err)
		return err
	}

	log.Debugw("Module written",
		logger.FieldOutput, j.path,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

// writeIndex writes the module index, only when every service succeeded
func (g *Generator) writeIndex(report *Report) error {
	if !report.OK() {
		g.log.Warnw("Module index not written because some services failed",
			logger.FieldFailed, len(report.Failed))
		return nil
	}
	out, err := g.RenderIndex(report.Modules())
	if err != nil {
		return err
	}
	path := g.IndexPath()
	if err := writeFileAtomic(path, out, config.DefaultFilePermissions); err != nil {
		return err
	}
	report.Index = path
	return nil
}
