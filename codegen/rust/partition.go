package rust

import (
	"strings"

	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/idl"
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

// Param is one parameter of a generated function
type Param struct {
	// Name is the Rust identifier (converted, keyword-escaped)
	Name string `json:"name" yaml:"name"`
	// RawName is the name declared in the service file
	RawName string `json:"raw_name" yaml:"raw_name"`
	// Position is the argument index on the wire; for methods the dropped
	// receiver occupies position 0
	Position int     `json:"position" yaml:"position"`
	Type     TypeRef `json:"type" yaml:"type"`
	// ByRef marks parameters passed as &T
	ByRef bool `json:"by_ref" yaml:"by_ref"`
}

// Return describes a procedure's result
type Return struct {
	Type     TypeRef `json:"type" yaml:"type"`
	IsClass  bool    `json:"is_class" yaml:"is_class"`
	Nullable bool    `json:"nullable" yaml:"nullable"`
}

// Signature is a normalized procedure, either free or a class method
type Signature struct {
	// Name is the method name (text after the class prefix) or the full
	// procedure name, as declared; templates convert it
	Name    string  `json:"name" yaml:"name"`
	RPCName string  `json:"rpc_name" yaml:"rpc_name"`
	ID      uint32  `json:"id" yaml:"id"`
	Doc     string  `json:"doc,omitempty" yaml:"doc,omitempty"`
	Params  []Param `json:"params" yaml:"params"`
	Return  *Return `json:"return,omitempty" yaml:"return,omitempty"`
}

// ClassMethods is a declared class and its methods sorted by name
type ClassMethods struct {
	Name    string      `json:"name" yaml:"name"`
	Doc     string      `json:"doc,omitempty" yaml:"doc,omitempty"`
	Methods []Signature `json:"methods" yaml:"methods"`
}

// Partitioned is a service's procedures split into class methods and free
// procedures. Classes and Procedures are sorted by name.
type Partitioned struct {
	Classes    []ClassMethods `json:"classes" yaml:"classes"`
	Procedures []Signature    `json:"procedures" yaml:"procedures"`
}

// MethodCount returns the number of methods across all classes
func (p *Partitioned) MethodCount() int {
	n := 0
	for _, c := range p.Classes {
		n += len(c.Methods)
	}
	return n
}

// Class returns the methods of the named class, nil if it is not declared
func (p *Partitioned) Class(name string) *ClassMethods {
	for i := range p.Classes {
		if p.Classes[i].Name == name {
			return &p.Classes[i]
		}
	}
	return nil
}

// SplitMethodName splits a procedure name at its first underscore.
// ok is false when the name has no underscore.
func SplitMethodName(procName string) (prefix, suffix string, ok bool) {
	return strings.Cut(procName, "_")
}

// Partition classifies every procedure of svc. A procedure whose name
// prefix (up to the first underscore) is a class of svc becomes a method of
// that class named by the rest; its first parameter is the receiver and is
// dropped. Everything else is a free procedure with all its parameters.
//
// Detection is purely syntactic: a prefix that happens to match an
// unrelated class is still taken as a method. An empty method name, or two
// procedures of one scope converting to the same Rust fn name, fail with
// ErrMalformedType.
func Partition(svc *idl.Service, r *Resolver) (*Partitioned, error) {
	methods := make(map[string]map[string]Signature, len(svc.Classes))
	for name := range svc.Classes {
		methods[name] = make(map[string]Signature)
	}
	free := make(map[string]Signature)
	// scope ("" for free procedures, else the class) -> Rust fn name -> procedure
	fnNames := make(map[string]map[string]string)

	for _, procName := range svc.ProcedureNames() {
		proc := svc.Procedures[procName]

		className, methodName, split := SplitMethodName(procName)
		_, isClass := svc.Classes[className]
		isMethod := split && isClass

		if isMethod && methodName == "" {
			return nil, errors.WithHintf(
				errors.Mark(errors.Newf("procedure %s: empty method name after class prefix %s", procName, className), errors.ErrMalformedType),
				"methods of %s are named %s_<Method>", className, className,
			)
		}

		scope, declared := "", procName
		if isMethod {
			scope, declared = className, methodName
		}
		fn := Ident(r.naming(declared))
		if fnNames[scope] == nil {
			fnNames[scope] = make(map[string]string)
		}
		if prev, taken := fnNames[scope][fn]; taken {
			return nil, errors.WithHint(
				errors.Mark(errors.Newf("procedures %s and %s both generate fn %s", prev, procName, fn), errors.ErrMalformedType),
				"procedure names must stay distinct after case conversion",
			)
		}
		fnNames[scope][fn] = procName

		sig, err := buildSignature(proc, r, isMethod)
		if err != nil {
			return nil, errors.Wrapf(err, "procedure %s", procName)
		}

		if !isMethod {
			sig.Name = procName
			free[procName] = sig
			continue
		}

		if len(proc.Parameters) == 0 {
			logger.Debugw("Method has no receiver parameter",
				logger.FieldService, svc.Name,
				logger.FieldProcedure, procName,
				logger.FieldClass, className)
		}
		sig.Name = methodName
		methods[className][methodName] = sig
	}

	out := &Partitioned{
		Classes:    make([]ClassMethods, 0, len(methods)),
		Procedures: make([]Signature, 0, len(free)),
	}
	for _, className := range util.SortedKeys(methods) {
		cm := ClassMethods{
			Name:    className,
			Doc:     util.OneLine(svc.Classes[className].Documentation),
			Methods: make([]Signature, 0, len(methods[className])),
		}
		for _, m := range util.SortedKeys(methods[className]) {
			cm.Methods = append(cm.Methods, methods[className][m])
		}
		out.Classes = append(out.Classes, cm)
	}
	for _, name := range util.SortedKeys(free) {
		out.Procedures = append(out.Procedures, free[name])
	}
	return out, nil
}

func buildSignature(proc *idl.Procedure, r *Resolver, isMethod bool) (Signature, error) {
	params := proc.Parameters
	first := 0
	if isMethod && len(params) > 0 {
		first = 1
	}

	sig := Signature{
		RPCName: proc.Name,
		ID:      proc.ID,
		Doc:     util.OneLine(proc.Documentation),
		Params:  make([]Param, 0, len(params)-first),
	}

	for i := first; i < len(params); i++ {
		p := params[i]
		ref, err := r.Resolve(p.Type)
		if err != nil {
			return Signature{}, errors.Wrapf(err, "parameter %s", p.Name)
		}
		sig.Params = append(sig.Params, Param{
			Name:     Ident(r.naming(p.Name)),
			RawName:  p.Name,
			Position: i,
			Type:     ref,
			ByRef:    !ref.Kind.ByValue(),
		})
	}

	if proc.ReturnType != nil {
		ref, err := r.Resolve(proc.ReturnType)
		if err != nil {
			return Signature{}, errors.Wrap(err, "return type")
		}
		sig.Return = &Return{
			Type:     ref,
			IsClass:  ref.Kind == KindClass,
			Nullable: proc.ReturnIsNullable,
		}
	}

	return sig, nil
}
