package codegen

import (
	"sort"
	"time"

	"go.uber.org/multierr"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

// Failure is a unit of work that did not produce output. Service is empty
// when the whole document failed to load.
type Failure struct {
	Source  string `json:"source" yaml:"source"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"`
	Err     error  `json:"-" yaml:"-"`
	Message string `json:"error" yaml:"error"`
	Hint    string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Error implements error
func (f Failure) Error() string {
	if f.Service == "" {
		return f.Source + ": " + f.Err.Error()
	}
	return "service " + f.Service + " (" + f.Source + "): " + f.Err.Error()
}

// Unwrap exposes the underlying error to errors.Is / errors.As
func (f Failure) Unwrap() error {
	return f.Err
}

// Written is one generated file
type Written struct {
	Service string `json:"service" yaml:"service"`
	Module  string `json:"module" yaml:"module"`
	Path    string `json:"path" yaml:"path"`
}

// Report summarises a generation run
type Report struct {
	Documents int           `json:"documents" yaml:"documents"`
	Services  int           `json:"services" yaml:"services"`
	Written   []Written     `json:"written" yaml:"written"`
	Failed    []Failure     `json:"failed,omitempty" yaml:"failed,omitempty"`
	Index     string        `json:"index,omitempty" yaml:"index,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// OK reports whether every document and service succeeded
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// Err combines every failure into one error, nil when the run succeeded
func (r *Report) Err() error {
	var err error
	for _, f := range r.Failed {
		err = multierr.Append(err, f)
	}
	return err
}

// Paths returns the written file paths in order
func (r *Report) Paths() []string {
	out := make([]string, 0, len(r.Written)+1)
	for _, w := range r.Written {
		out = append(out, w.Path)
	}
	if r.Index != "" {
		out = append(out, r.Index)
	}
	return out
}

// Modules returns the modules of the written files, sorted
func (r *Report) Modules() []string {
	out := make([]string, 0, len(r.Written))
	for _, w := range r.Written {
		out = append(out, w.Module)
	}
	sort.Strings(out)
	return out
}

func (r *Report) fail(source, service string, err error) {
	r.Failed = append(r.Failed, Failure{
		Source:  source,
		Service: service,
		Err:     err,
		Message: err.Error(),
		Hint:    errors.FlattenHints(err),
	})
}

func (r *Report) sort() {
	sort.Slice(r.Written, func(i, j int) bool { return r.Written[i].Path < r.Written[j].Path })
	sort.SliceStable(r.Failed, func(i, j int) bool {
		if r.Failed[i].Source != r.Failed[j].Source {
			return r.Failed[i].Source < r.Failed[j].Source
		}
		return r.Failed[i].Service < r.Failed[j].Service
	})
}
