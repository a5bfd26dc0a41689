// Package idl holds the in-memory model of a kRPC service definition
// document: services, their procedures, classes and enumerations, and the
// recursive type algebra used in signatures.
//
// A ServiceFile is built once by Decode or Load and is read-only afterwards;
// it may be shared between goroutines.
package idl

import (
	"github.com/Cahu/krpc-mars-terraformer/internal/util"
)

// ServiceFile is one decoded document: service name -> Service
type ServiceFile struct {
	// Path the document was loaded from, empty when decoded from memory
	Path     string
	Services map[string]*Service
}

// Service is a named collection of procedures, classes and enumerations
type Service struct {
	Name          string
	ID            uint32
	Documentation string
	Procedures    map[string]*Procedure
	Classes       map[string]*ClassDef
	Enumerations  map[string]*Enum
}

// Procedure is a callable operation. Parameter order is call-site order.
type Procedure struct {
	Name             string
	ID               uint32
	Documentation    string
	Parameters       []ProcParameter
	ReturnType       Type // nil when the procedure returns nothing
	ReturnIsNullable bool
}

// ProcParameter is one declared parameter of a procedure
type ProcParameter struct {
	Name string
	Type Type
}

// ClassDef is a declared class; procedures prefixed with its name are its methods
type ClassDef struct {
	Name          string
	Documentation string
}

// Enum is an enumeration. Value names are unique, numeric values need not be.
type Enum struct {
	Name          string
	Documentation string
	Values        []EnumValue
}

// EnumValue is one named member of an enumeration
type EnumValue struct {
	Name  string
	Value uint32
}

// ServiceNames returns the service names in lexicographic order
func (f *ServiceFile) ServiceNames() []string {
	return util.SortedKeys(f.Services)
}

// ProcedureNames returns the procedure names in lexicographic order
func (s *Service) ProcedureNames() []string {
	return util.SortedKeys(s.Procedures)
}

// ClassNames returns the class names in lexicographic order
func (s *Service) ClassNames() []string {
	return util.SortedKeys(s.Classes)
}

// EnumerationNames returns the enumeration names in lexicographic order
func (s *Service) EnumerationNames() []string {
	return util.SortedKeys(s.Enumerations)
}

// HasReturn reports whether the procedure returns a value
func (p *Procedure) HasReturn() bool {
	return p.ReturnType != nil
}
