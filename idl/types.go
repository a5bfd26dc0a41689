package idl

import (
	"strings"
)

// Code is the wire tag of a type node (the "code" field)
type Code string

// Type codes understood by the compiler. Matching against the wire is
// case-insensitive; these are the canonical spellings.
const (
	CodeBool     Code = "BOOL"
	CodeSInt32   Code = "SINT32"
	CodeUInt32   Code = "UINT32"
	CodeSInt64   Code = "SINT64"
	CodeUInt64   Code = "UINT64"
	CodeDouble   Code = "DOUBLE"
	CodeFloat    Code = "FLOAT"
	CodeString   Code = "STRING"
	CodeBytes    Code = "BYTES"
	CodeList     Code = "LIST"
	CodeSet      Code = "SET"
	CodeTuple    Code = "TUPLE"
	CodeDict     Code = "DICTIONARY"
	CodeClass    Code = "CLASS"
	CodeEnum     Code = "ENUMERATION"
	CodeEvent    Code = "EVENT"
	CodeProcCall Code = "PROCEDURE_CALL"
	CodeStream   Code = "STREAM"
	CodeServices Code = "SERVICES"
	CodeStatus   Code = "STATUS"
)

// Type is one node of the IDL type algebra. The set of implementations is
// closed: Primitive, Message, List, Set, Tuple, Dictionary, Class and
// Enumeration.
type Type interface {
	// Code returns the canonical wire tag
	Code() Code
	// String renders the node in IDL notation, e.g. LIST(CLASS(SpaceCenter.Vessel))
	String() string

	isType()
}

// Primitive is a scalar type carrying no payload
type Primitive struct {
	Kind Code
}

// Message is one of the kRPC protocol's own message types (Event, Stream, ...)
type Message struct {
	Kind Code
}

// List is a homogeneous sequence. Types holds the child nodes exactly as
// declared; a well-formed list has exactly one.
type List struct {
	Types []Type
}

// Set is an unordered collection of unique elements; well-formed with one child
type Set struct {
	Types []Type
}

// Tuple is a fixed-size heterogeneous sequence of zero or more children
type Tuple struct {
	Types []Type
}

// Dictionary maps Types[0] (key) to Types[1] (value); well-formed with two children
type Dictionary struct {
	Types []Type
}

// Class references a class declared in Service by name
type Class struct {
	Service string
	Name    string
}

// Enumeration references an enumeration declared in Service by name
type Enumeration struct {
	Service string
	Name    string
}

// Primitive and message singletons
var (
	Bool   = Primitive{Kind: CodeBool}
	SInt32 = Primitive{Kind: CodeSInt32}
	UInt32 = Primitive{Kind: CodeUInt32}
	SInt64 = Primitive{Kind: CodeSInt64}
	UInt64 = Primitive{Kind: CodeUInt64}
	Double = Primitive{Kind: CodeDouble}
	Float  = Primitive{Kind: CodeFloat}
	String = Primitive{Kind: CodeString}
	Bytes  = Primitive{Kind: CodeBytes}

	Event         = Message{Kind: CodeEvent}
	ProcedureCall = Message{Kind: CodeProcCall}
	Stream        = Message{Kind: CodeStream}
	Services      = Message{Kind: CodeServices}
	Status        = Message{Kind: CodeStatus}
)

var primitives = map[Code]Primitive{
	CodeBool:   Bool,
	CodeSInt32: SInt32,
	CodeUInt32: UInt32,
	CodeSInt64: SInt64,
	CodeUInt64: UInt64,
	CodeDouble: Double,
	CodeFloat:  Float,
	CodeString: String,
	CodeBytes:  Bytes,
}

var messages = map[Code]Message{
	CodeEvent:    Event,
	CodeProcCall: ProcedureCall,
	CodeStream:   Stream,
	CodeServices: Services,
	CodeStatus:   Status,
}

// ParseCode normalizes a wire tag. ok is false for tags outside the algebra.
func ParseCode(s string) (Code, bool) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CodeList, CodeSet, CodeTuple, CodeDict, CodeClass, CodeEnum:
		return c, true
	}
	if _, ok := primitives[c]; ok {
		return c, true
	}
	if _, ok := messages[c]; ok {
		return c, true
	}
	return "", false
}

func (t Primitive) Code() Code { return t.Kind }
func (t Message) Code() Code   { return t.Kind }
func (List) Code() Code        { return CodeList }
func (Set) Code() Code         { return CodeSet }
func (Tuple) Code() Code       { return CodeTuple }
func (Dictionary) Code() Code  { return CodeDict }
func (Class) Code() Code       { return CodeClass }
func (Enumeration) Code() Code { return CodeEnum }

func (t Primitive) String() string   { return string(t.Kind) }
func (t Message) String() string     { return string(t.Kind) }
func (t List) String() string        { return container(CodeList, t.Types) }
func (t Set) String() string         { return container(CodeSet, t.Types) }
func (t Tuple) String() string       { return container(CodeTuple, t.Types) }
func (t Dictionary) String() string  { return container(CodeDict, t.Types) }
func (t Class) String() string       { return reference(CodeClass, t.Service, t.Name) }
func (t Enumeration) String() string { return reference(CodeEnum, t.Service, t.Name) }

func (Primitive) isType()   {}
func (Message) isType()     {}
func (List) isType()        {}
func (Set) isType()         {}
func (Tuple) isType()       {}
func (Dictionary) isType()  {}
func (Class) isType()       {}
func (Enumeration) isType() {}

func container(code Code, children []Type) string {
	var b strings.Builder
	b.WriteString(string(code))
	b.WriteByte('(')
	for i, c := range children {
		if i > 0 {
			b.WriteString(", ")
		}
		if c == nil {
			b.WriteString("<nil>")
			continue
		}
		b.WriteString(c.String())
	}
	b.WriteByte(')')
	return b.String()
}

func reference(code Code, service, name string) string {
	return string(code) + "(" + service + "." + name + ")"
}

// Children returns the directly nested types of a container node, nil for
// any other node.
func Children(t Type) []Type {
	switch t := t.(type) {
	case List:
		return t.Types
	case Set:
		return t.Types
	case Tuple:
		return t.Types
	case Dictionary:
		return t.Types
	}
	return nil
}
