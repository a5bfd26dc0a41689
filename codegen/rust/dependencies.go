package rust

import (
	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/idl"
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
)

// DependencySet is the set of other services' classes and enumerations a
// service's generated module refers to
type DependencySet struct {
	names   map[string]struct{}
	modules map[string]struct{}
}

func newDependencySet() *DependencySet {
	return &DependencySet{
		names:   make(map[string]struct{}),
		modules: make(map[string]struct{}),
	}
}

func (d *DependencySet) add(module, qualified string) {
	d.names[qualified] = struct{}{}
	d.modules[module] = struct{}{}
}

// Names returns the qualified names (module::Name), sorted
func (d *DependencySet) Names() []string {
	return util.SortedKeys(d.names)
}

// Modules returns the distinct modules the names live in, sorted
func (d *DependencySet) Modules() []string {
	return util.SortedKeys(d.modules)
}

// Len returns the number of distinct qualified names
func (d *DependencySet) Len() int {
	return len(d.names)
}

// Contains reports whether qualified is in the set
func (d *DependencySet) Contains(qualified string) bool {
	_, ok := d.names[qualified]
	return ok
}

// Dependencies walks every parameter and return type of svc's procedures and
// collects the class and enumeration references owned by other services.
//
// The walk uses an explicit work list instead of recursion so that type
// nesting depth never grows the call stack. Arity is not checked here; the
// resolver reports it when the signatures are built.
func Dependencies(svc *idl.Service, naming Namer) (*DependencySet, error) {
	deps := newDependencySet()
	r := NewResolver(svc.Name, naming)

	var work []idl.Type
	for _, procName := range svc.ProcedureNames() {
		proc := svc.Procedures[procName]
		work = work[:0]
		for _, p := range proc.Parameters {
			work = append(work, p.Type)
		}
		if proc.ReturnType != nil {
			work = append(work, proc.ReturnType)
		}

		for len(work) > 0 {
			t := work[len(work)-1]
			work = work[:len(work)-1]

			switch t := t.(type) {
			case nil:
				return nil, errors.Wrapf(errors.NewMalformedTypef("missing type"), "procedure %s", procName)
			case idl.List, idl.Set, idl.Tuple, idl.Dictionary:
				work = append(work, idl.Children(t)...)
			case idl.Class:
				collect(deps, r, t.Service, t.Name)
			case idl.Enumeration:
				collect(deps, r, t.Service, t.Name)
			}
		}
	}
	return deps, nil
}

func collect(deps *DependencySet, r *Resolver, service, name string) {
	if service == r.Service() || service == "" || name == "" {
		return
	}
	deps.add(r.Module(service), r.Qualify(service, name))
}
