package rust

import (
	"fortio.org/safecast"

	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/idl"
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
)

// EnumValue is one member of a generated enum. Value is the wire value,
// checked to fit the protocol's signed 32-bit enum encoding.
type EnumValue struct {
	Name  string `json:"name" yaml:"name"`
	Value int32  `json:"value" yaml:"value"`
}

// Enum is a generated enum with its members in declared order
type Enum struct {
	Name   string      `json:"name" yaml:"name"`
	Doc    string      `json:"doc,omitempty" yaml:"doc,omitempty"`
	Values []EnumValue `json:"values" yaml:"values"`
}

// ServiceContext is everything a template needs to render one service
type ServiceContext struct {
	Name   string `json:"name" yaml:"name"`
	Module string `json:"module" yaml:"module"`
	ID     uint32 `json:"id" yaml:"id"`
	Doc    string `json:"doc,omitempty" yaml:"doc,omitempty"`
	// Source is the base name of the service file, set by the driver
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Dependencies are qualified names from other services, sorted
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
	// Imports are the distinct modules of Dependencies, sorted
	Imports    []string       `json:"imports" yaml:"imports"`
	Classes    []ClassMethods `json:"classes" yaml:"classes"`
	Procedures []Signature    `json:"procedures" yaml:"procedures"`
	Enums      []Enum         `json:"enums" yaml:"enums"`
}

// BuildContext assembles the rendering context of svc. Any malformed type
// in any procedure fails the whole service.
func BuildContext(svc *idl.Service, naming Namer) (*ServiceContext, error) {
	deps, err := Dependencies(svc, naming)
	if err != nil {
		return nil, err
	}

	parts, err := Partition(svc, NewResolver(svc.Name, naming))
	if err != nil {
		return nil, err
	}

	enums, err := buildEnums(svc)
	if err != nil {
		return nil, err
	}

	return &ServiceContext{
		Name:         svc.Name,
		Module:       naming(svc.Name),
		ID:           svc.ID,
		Doc:          util.OneLine(svc.Documentation),
		Dependencies: deps.Names(),
		Imports:      deps.Modules(),
		Classes:      parts.Classes,
		Procedures:   parts.Procedures,
		Enums:        enums,
	}, nil
}

func buildEnums(svc *idl.Service) ([]Enum, error) {
	out := make([]Enum, 0, len(svc.Enumerations))
	for _, name := range svc.EnumerationNames() {
		e := svc.Enumerations[name]
		enum := Enum{
			Name:   name,
			Doc:    util.OneLine(e.Documentation),
			Values: make([]EnumValue, 0, len(e.Values)),
		}
		for _, v := range e.Values {
			value, err := safecast.Conv[int32](v.Value)
			if err != nil {
				return nil, errors.WithHint(
					errors.Mark(errors.Wrapf(err, "enumeration %s value %s", name, v.Name), errors.ErrMalformedEnum),
					"kRPC encodes enumeration values as signed 32-bit integers",
				)
			}
			enum.Values = append(enum.Values, EnumValue{Name: v.Name, Value: value})
		}
		out = append(out, enum)
	}
	return out, nil
}
