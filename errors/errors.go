// Package errors provides error handling for krpcgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//   - Marking errors with a category that survives wrapping
//
// Usage:
//
//	// Wrap with context
//	if err := decode(raw); err != nil {
//	    return errors.Wrapf(err, "decode service %s", name)
//	}
//
//	// Attach a category from the taxonomy below
//	return errors.Mark(errors.Newf("list expects 1 element type, got %d", n), errors.ErrMalformedType)
//
//	// Check the category later
//	if errors.Is(err, errors.ErrMalformedType) {
//	    // structural problem in the service file
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Error taxonomy of the compiler. Every failure leaving a package is marked
// with exactly one of these so callers can use errors.Is() regardless of how
// much context was wrapped around it.
var (
	// ErrIO indicates a read, write, open or directory listing failed
	ErrIO = New("i/o failure")

	// ErrParse indicates the document is not valid JSON or does not match
	// the service file shape (missing required field, wrong JSON type)
	ErrParse = New("service file parsing error")

	// ErrMalformedType indicates a type node with the wrong arity, an
	// unknown code or a missing sub-field, or a procedure name that does
	// not yield a distinct Rust function
	ErrMalformedType = New("malformed type")

	// ErrMalformedEnum indicates an enumeration the target cannot represent
	ErrMalformedEnum = New("malformed enumeration")

	// ErrRender indicates the template engine rejected a template or context
	ErrRender = New("template engine error")
)

// IsParseError checks if an error is or wraps ErrParse
func IsParseError(err error) bool {
	return err != nil && Is(err, ErrParse)
}

// IsStructuralError checks if an error is a malformed type or enumeration
func IsStructuralError(err error) bool {
	return err != nil && IsAny(err, ErrMalformedType, ErrMalformedEnum)
}

// IsIOError checks if an error is or wraps ErrIO
func IsIOError(err error) bool {
	return err != nil && Is(err, ErrIO)
}

// IsRenderError checks if an error is or wraps ErrRender
func IsRenderError(err error) bool {
	return err != nil && Is(err, ErrRender)
}

// NewMalformedTypef creates a structural error about a type node
func NewMalformedTypef(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrMalformedType)
}

// NewParseErrorf creates a parse error with a formatted message
func NewParseErrorf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrParse)
}

// WrapIO marks err as an I/O failure and adds context.
// Returns nil if err is nil.
func WrapIO(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Mark(Wrapf(err, format, args...), ErrIO)
}
