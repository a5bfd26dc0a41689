package idl

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
)

// Wire shapes. Pointers distinguish a missing field from its zero value.
type (
	rawService struct {
		ID            *uint32                  `json:"id"`
		Documentation string                   `json:"documentation"`
		Procedures    map[string]*rawProcedure `json:"procedures"`
		Classes       map[string]*rawClass     `json:"classes"`
		Enumerations  map[string]*rawEnum      `json:"enumerations"`
	}

	rawProcedure struct {
		ID                   *uint32          `json:"id"`
		Documentation        string           `json:"documentation"`
		Parameters           *[]*rawParameter `json:"parameters"`
		ReturnType           *rawType         `json:"return_type"`
		ReturnIsNullable     *bool            `json:"return_is_nullable"`
		ReturnTypeIsNullable *bool            `json:"return_type_is_nullable"`
	}

	rawParameter struct {
		Name *string  `json:"name"`
		Type *rawType `json:"type"`
	}

	rawClass struct {
		Documentation string `json:"documentation"`
	}

	rawEnum struct {
		Documentation string          `json:"documentation"`
		Values        *[]*rawEnumValue `json:"values"`
	}

	rawEnumValue struct {
		Name  *string `json:"name"`
		Value *uint32 `json:"value"`
	}

	rawType struct {
		Code    *string     `json:"code"`
		Types   *[]*rawType `json:"types"`
		Service *string     `json:"service"`
		Name    *string     `json:"name"`
	}
)

// Load reads and decodes the service definition document at path
func Load(path string) (*ServiceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO(err, "read service file %s", path)
	}

	file, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	file.Path = path
	return file, nil
}

// Decode builds a ServiceFile from a JSON document.
//
// Malformed JSON or a missing required field fails with errors.ErrParse.
// A type node without a code, with an unknown code, or without the sub-fields
// its code requires fails with errors.ErrMalformedType. Container arity is
// left to the resolver so that it can be reported per service.
func Decode(data []byte) (*ServiceFile, error) {
	var raw map[string]*rawService
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WithHint(
			errors.Mark(errors.Wrap(err, "invalid service file"), errors.ErrParse),
			"a service file is a JSON object mapping service names to service definitions",
		)
	}
	if raw == nil {
		return nil, errors.NewParseErrorf("service file is null")
	}

	file := &ServiceFile{Services: make(map[string]*Service, len(raw))}
	for _, name := range util.SortedKeys(raw) {
		svc, err := convertService(name, raw[name])
		if err != nil {
			return nil, errors.Wrapf(err, "service %s", name)
		}
		file.Services[name] = svc
	}
	return file, nil
}

func convertService(name string, raw *rawService) (*Service, error) {
	if raw == nil {
		return nil, errors.NewParseErrorf("definition is null")
	}
	if raw.ID == nil {
		return nil, missing("id")
	}
	if raw.Procedures == nil {
		return nil, missing("procedures")
	}
	if raw.Classes == nil {
		return nil, missing("classes")
	}
	if raw.Enumerations == nil {
		return nil, missing("enumerations")
	}

	svc := &Service{
		Name:          name,
		ID:            *raw.ID,
		Documentation: raw.Documentation,
		Procedures:    make(map[string]*Procedure, len(raw.Procedures)),
		Classes:       make(map[string]*ClassDef, len(raw.Classes)),
		Enumerations:  make(map[string]*Enum, len(raw.Enumerations)),
	}

	for _, procName := range util.SortedKeys(raw.Procedures) {
		proc, err := convertProcedure(procName, raw.Procedures[procName])
		if err != nil {
			return nil, errors.Wrapf(err, "procedure %s", procName)
		}
		svc.Procedures[procName] = proc
	}

	for className, rc := range raw.Classes {
		if rc == nil {
			return nil, errors.NewParseErrorf("class %s: definition is null", className)
		}
		svc.Classes[className] = &ClassDef{Name: className, Documentation: rc.Documentation}
	}

	for _, enumName := range util.SortedKeys(raw.Enumerations) {
		enum, err := convertEnum(enumName, raw.Enumerations[enumName])
		if err != nil {
			return nil, errors.Wrapf(err, "enumeration %s", enumName)
		}
		svc.Enumerations[enumName] = enum
	}

	return svc, nil
}

func convertProcedure(name string, raw *rawProcedure) (*Procedure, error) {
	if raw == nil {
		return nil, errors.NewParseErrorf("definition is null")
	}
	if raw.ID == nil {
		return nil, missing("id")
	}
	if raw.Parameters == nil {
		return nil, missing("parameters")
	}

	proc := &Procedure{
		Name:          name,
		ID:            *raw.ID,
		Documentation: raw.Documentation,
		Parameters:    make([]ProcParameter, 0, len(*raw.Parameters)),
	}

	for i, rp := range *raw.Parameters {
		if rp == nil {
			return nil, errors.NewParseErrorf("parameter %d is null", i)
		}
		if rp.Name == nil {
			return nil, errors.Wrapf(missing("name"), "parameter %d", i)
		}
		if rp.Type == nil {
			return nil, errors.Wrapf(missing("type"), "parameter %d (%s)", i, *rp.Name)
		}
		t, err := convertType(rp.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d (%s)", i, *rp.Name)
		}
		proc.Parameters = append(proc.Parameters, ProcParameter{Name: *rp.Name, Type: t})
	}

	if raw.ReturnType != nil {
		t, err := convertType(raw.ReturnType)
		if err != nil {
			return nil, errors.Wrap(err, "return type")
		}
		proc.ReturnType = t
	}

	switch {
	case raw.ReturnIsNullable != nil:
		proc.ReturnIsNullable = *raw.ReturnIsNullable
	case raw.ReturnTypeIsNullable != nil:
		proc.ReturnIsNullable = *raw.ReturnTypeIsNullable
	}

	return proc, nil
}

func convertEnum(name string, raw *rawEnum) (*Enum, error) {
	if raw == nil {
		return nil, errors.NewParseErrorf("definition is null")
	}
	if raw.Values == nil {
		return nil, missing("values")
	}

	enum := &Enum{
		Name:          name,
		Documentation: raw.Documentation,
		Values:        make([]EnumValue, 0, len(*raw.Values)),
	}
	seen := make(map[string]struct{}, len(*raw.Values))
	for i, rv := range *raw.Values {
		if rv == nil {
			return nil, errors.NewParseErrorf("value %d is null", i)
		}
		if rv.Name == nil {
			return nil, errors.Wrapf(missing("name"), "value %d", i)
		}
		if rv.Value == nil {
			return nil, errors.Wrapf(missing("value"), "value %d (%s)", i, *rv.Name)
		}
		if _, dup := seen[*rv.Name]; dup {
			return nil, errors.Mark(errors.Newf("duplicate value name %q", *rv.Name), errors.ErrMalformedEnum)
		}
		seen[*rv.Name] = struct{}{}
		enum.Values = append(enum.Values, EnumValue{Name: *rv.Name, Value: *rv.Value})
	}
	return enum, nil
}

// convertType validates the fields each code requires and builds the node.
// Recursion depth follows the document's nesting, which the JSON decoder
// has already materialized.
func convertType(raw *rawType) (Type, error) {
	if raw.Code == nil {
		return nil, errors.NewMalformedTypef("type node has no 'code'")
	}
	code, ok := ParseCode(*raw.Code)
	if !ok {
		return nil, errors.WithHintf(
			errors.NewMalformedTypef("unknown type code %q", *raw.Code),
			"supported codes: %s", supportedCodes(),
		)
	}

	if p, ok := primitives[code]; ok {
		return p, nil
	}
	if m, ok := messages[code]; ok {
		return m, nil
	}

	switch code {
	case CodeClass, CodeEnum:
		if raw.Service == nil {
			return nil, errors.NewMalformedTypef("%s type node has no 'service'", code)
		}
		if raw.Name == nil {
			return nil, errors.NewMalformedTypef("%s type node has no 'name'", code)
		}
		if code == CodeClass {
			return Class{Service: *raw.Service, Name: *raw.Name}, nil
		}
		return Enumeration{Service: *raw.Service, Name: *raw.Name}, nil
	}

	// containers
	if raw.Types == nil {
		return nil, errors.NewMalformedTypef("%s type node has no 'types'", code)
	}
	children := make([]Type, 0, len(*raw.Types))
	for i, rc := range *raw.Types {
		if rc == nil {
			return nil, errors.NewMalformedTypef("%s element %d is null", code, i)
		}
		child, err := convertType(rc)
		if err != nil {
			return nil, errors.Wrapf(err, "%s element %d", code, i)
		}
		children = append(children, child)
	}

	switch code {
	case CodeList:
		return List{Types: children}, nil
	case CodeSet:
		return Set{Types: children}, nil
	case CodeTuple:
		return Tuple{Types: children}, nil
	default:
		return Dictionary{Types: children}, nil
	}
}

func missing(field string) error {
	return errors.NewParseErrorf("missing required field %q", field)
}

func supportedCodes() string {
	codes := []Code{
		CodeBool, CodeSInt32, CodeUInt32, CodeSInt64, CodeUInt64, CodeDouble, CodeFloat,
		CodeString, CodeBytes, CodeList, CodeSet, CodeTuple, CodeDict, CodeClass, CodeEnum,
		CodeEvent, CodeProcCall, CodeStream, CodeServices, CodeStatus,
	}
	return fmt.Sprint(codes)
}
