// Package rust maps the kRPC IDL onto Rust: type expressions, cross-service
// dependencies and the split of procedures into class methods and free
// functions. Everything here is pure and deterministic; rendering and file
// output live in the parent codegen package.
package rust

import (
	"sort"
	"strings"

	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/idl"
)

// Namer converts an IDL name to the identifier convention of generated code.
// One Namer is shared by every component so that module names, qualified
// references and parameter identifiers agree.
type Namer func(string) string

// Kind classifies a resolved type for calling conventions
type Kind int

const (
	KindPrimitive Kind = iota
	KindMessage
	KindList
	KindSet
	KindTuple
	KindDictionary
	KindClass
	KindEnumeration
)

var kindNames = [...]string{
	KindPrimitive:   "primitive",
	KindMessage:     "message",
	KindList:        "list",
	KindSet:         "set",
	KindTuple:       "tuple",
	KindDictionary:  "dictionary",
	KindClass:       "class",
	KindEnumeration: "enumeration",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText renders the kind by name in context dumps
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ByValue reports whether values of this kind are passed by value in
// generated signatures; containers and class handles are borrowed.
func (k Kind) ByValue() bool {
	switch k {
	case KindPrimitive, KindMessage, KindTuple, KindEnumeration:
		return true
	}
	return false
}

// TypeRef is a resolved type: its Rust expression and the qualified names of
// other services' classes and enumerations it mentions (sorted, distinct).
type TypeRef struct {
	Expr string   `json:"expr" yaml:"expr"`
	Kind Kind     `json:"kind" yaml:"kind"`
	Deps []string `json:"deps,omitempty" yaml:"deps,omitempty"`
}

// Rust spellings of the primitive and protocol message types
var primitiveTypes = map[idl.Code]string{
	idl.CodeBool:   "bool",
	idl.CodeSInt32: "i32",
	idl.CodeUInt32: "u32",
	idl.CodeSInt64: "i64",
	idl.CodeUInt64: "u64",
	idl.CodeDouble: "f64",
	idl.CodeFloat:  "f32",
	idl.CodeString: "String",
	idl.CodeBytes:  "Vec<u8>",
}

var messageTypes = map[idl.Code]string{
	idl.CodeEvent:    "krpc_mars::krpc::Event",
	idl.CodeProcCall: "krpc_mars::krpc::ProcedureCall",
	idl.CodeStream:   "krpc_mars::krpc::Stream",
	idl.CodeServices: "krpc_mars::krpc::Services",
	idl.CodeStatus:   "krpc_mars::krpc::Status",
}

const (
	setType = "std::collections::HashSet"
	mapType = "std::collections::HashMap"
)

// Resolver turns IDL types into Rust type expressions from the point of
// view of one service.
type Resolver struct {
	service string
	naming  Namer
}

// NewResolver creates a resolver for types appearing in service
func NewResolver(service string, naming Namer) *Resolver {
	return &Resolver{service: service, naming: naming}
}

// Service returns the service the resolver generates for
func (r *Resolver) Service() string {
	return r.service
}

// Module returns the generated module identifier of a service
func (r *Resolver) Module(service string) string {
	return r.naming(service)
}

// Qualify returns the reference to name from another service's module
func (r *Resolver) Qualify(service, name string) string {
	return r.Module(service) + "::" + name
}

// Resolve maps t to its Rust expression. Malformed nodes (wrong arity, nil
// children, empty references, unknown codes) fail with errors.ErrMalformedType;
// nothing is ever defaulted.
func (r *Resolver) Resolve(t idl.Type) (TypeRef, error) {
	deps := make(map[string]struct{})
	expr, kind, err := r.resolve(t, deps)
	if err != nil {
		return TypeRef{}, err
	}

	ref := TypeRef{Expr: expr, Kind: kind}
	if len(deps) > 0 {
		ref.Deps = make([]string, 0, len(deps))
		for d := range deps {
			ref.Deps = append(ref.Deps, d)
		}
		sort.Strings(ref.Deps)
	}
	return ref, nil
}

func (r *Resolver) resolve(t idl.Type, deps map[string]struct{}) (string, Kind, error) {
	switch t := t.(type) {
	case nil:
		return "", 0, errors.NewMalformedTypef("missing type")

	case idl.Primitive:
		expr, ok := primitiveTypes[t.Kind]
		if !ok {
			return "", 0, errors.NewMalformedTypef("unknown primitive type %q", t.Kind)
		}
		return expr, KindPrimitive, nil

	case idl.Message:
		expr, ok := messageTypes[t.Kind]
		if !ok {
			return "", 0, errors.NewMalformedTypef("unknown message type %q", t.Kind)
		}
		return expr, KindMessage, nil

	case idl.List:
		elem, err := r.single(idl.CodeList, t.Types, deps)
		if err != nil {
			return "", 0, err
		}
		return "Vec<" + elem + ">", KindList, nil

	case idl.Set:
		elem, err := r.single(idl.CodeSet, t.Types, deps)
		if err != nil {
			return "", 0, err
		}
		return setType + "<" + elem + ">", KindSet, nil

	case idl.Tuple:
		elems := make([]string, len(t.Types))
		for i, child := range t.Types {
			expr, _, err := r.resolve(child, deps)
			if err != nil {
				return "", 0, errors.Wrapf(err, "TUPLE element %d", i)
			}
			elems[i] = expr
		}
		switch len(elems) {
		case 0:
			return "()", KindTuple, nil
		case 1:
			// Rust needs the trailing comma to tell a one-tuple from a parenthesized type
			return "(" + elems[0] + ",)", KindTuple, nil
		default:
			return "(" + strings.Join(elems, ", ") + ")", KindTuple, nil
		}

	case idl.Dictionary:
		if len(t.Types) != 2 {
			return "", 0, errors.NewMalformedTypef("DICTIONARY expects exactly 2 element types (key, value), got %d", len(t.Types))
		}
		key, _, err := r.resolve(t.Types[0], deps)
		if err != nil {
			return "", 0, errors.Wrap(err, "DICTIONARY key")
		}
		val, _, err := r.resolve(t.Types[1], deps)
		if err != nil {
			return "", 0, errors.Wrap(err, "DICTIONARY value")
		}
		return mapType + "<" + key + ", " + val + ">", KindDictionary, nil

	case idl.Class:
		expr, err := r.reference(idl.CodeClass, t.Service, t.Name, deps)
		return expr, KindClass, err

	case idl.Enumeration:
		expr, err := r.reference(idl.CodeEnum, t.Service, t.Name, deps)
		return expr, KindEnumeration, err

	default:
		return "", 0, errors.NewMalformedTypef("unsupported type node %T", t)
	}
}

func (r *Resolver) single(code idl.Code, children []idl.Type, deps map[string]struct{}) (string, error) {
	if len(children) != 1 {
		return "", errors.NewMalformedTypef("%s expects exactly 1 element type, got %d", code, len(children))
	}
	expr, _, err := r.resolve(children[0], deps)
	if err != nil {
		return "", errors.Wrapf(err, "%s element", code)
	}
	return expr, nil
}

func (r *Resolver) reference(code idl.Code, service, name string, deps map[string]struct{}) (string, error) {
	if name == "" {
		return "", errors.NewMalformedTypef("%s reference has an empty name", code)
	}
	if service == "" {
		return "", errors.NewMalformedTypef("%s reference %s has an empty service", code, name)
	}
	if service == r.service {
		return name, nil
	}
	qualified := r.Qualify(service, name)
	deps[qualified] = struct{}{}
	return qualified, nil
}
