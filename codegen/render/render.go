// Package render turns a service rendering context into source text using
// named text templates.
//
// The default templates are embedded in the binary. A template directory can
// override any of them by providing a file with the same name; files with
// other names are parsed too and may be invoked from the overrides.
package render

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Cahu/krpc-mars-terraformer/codegen/rust"
	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
)

// Template names
const (
	ServiceTemplate = "service.rs.tmpl"
	IndexTemplate   = "mod.rs.tmpl"
)

// templatePattern selects template files in the embedded set and in
// override directories
const templatePattern = "*.tmpl"

//go:embed templates/*.tmpl
var embedded embed.FS

// Options configures a Renderer
type Options struct {
	// Naming is the case converter behind the snake_case filter
	Naming rust.Namer
	// Dir overrides embedded templates by file name; empty uses only the
	// embedded set
	Dir string
	// Version is exposed to templates as generator_version
	Version string
}

// Renderer executes named templates
type Renderer struct {
	tmpl *template.Template
}

// Index is the data of the module index template
type Index struct {
	Modules []string
}

// New parses the embedded templates and, if opts.Dir is set, the overrides
func New(opts Options) (*Renderer, error) {
	if opts.Naming == nil {
		opts.Naming = util.ToSnakeCase
	}

	tmpl := template.New("krpcgen").
		Option("missingkey=error").
		Funcs(Funcs(opts.Naming, opts.Version))

	tmpl, err := tmpl.ParseFS(embedded, "templates/"+templatePattern)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse embedded templates"), errors.ErrRender)
	}

	if opts.Dir != "" {
		if err := parseDir(tmpl, opts.Dir); err != nil {
			return nil, err
		}
	}
	return &Renderer{tmpl: tmpl}, nil
}

func parseDir(tmpl *template.Template, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.WrapIO(err, "template directory %s", dir)
	}
	if !info.IsDir() {
		return errors.WithHint(
			errors.Mark(errors.Newf("template directory %s is not a directory", dir), errors.ErrIO),
			"templates.dir must point to a directory of *.tmpl files",
		)
	}

	matches, err := filepath.Glob(filepath.Join(dir, templatePattern))
	if err != nil {
		return errors.WrapIO(err, "template directory %s", dir)
	}
	if len(matches) == 0 {
		return nil
	}
	if _, err := tmpl.ParseFiles(matches...); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to parse templates in %s", dir), errors.ErrRender)
	}
	return nil
}

// Service renders one service
func (r *Renderer) Service(ctx *rust.ServiceContext) ([]byte, error) {
	return r.Execute(ServiceTemplate, ctx)
}

// Index renders the module index listing modules
func (r *Renderer) Index(modules []string) ([]byte, error) {
	return r.Execute(IndexTemplate, Index{Modules: modules})
}

// Execute renders the named template with data
func (r *Renderer) Execute(name string, data any) ([]byte, error) {
	if r.tmpl.Lookup(name) == nil {
		return nil, errors.Mark(errors.Newf("template %q not found", name), errors.ErrRender)
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to render %s", name), errors.ErrRender)
	}
	return buf.Bytes(), nil
}

// Names lists the templates known to the renderer
func (r *Renderer) Names() []string {
	names := make(map[string]struct{})
	for _, t := range r.tmpl.Templates() {
		if t.Name() != "krpcgen" {
			names[t.Name()] = struct{}{}
		}
	}
	return util.SortedKeys(names)
}
