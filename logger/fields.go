package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across krpcgen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"

	// IDL entities
	FieldService   = "service"
	FieldProcedure = "procedure"
	FieldClass     = "class"
	FieldEnum      = "enumeration"

	// Files and paths
	FieldFile   = "file"
	FieldOutput = "output"
	FieldDir    = "dir"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount  = "count"
	FieldJobs   = "jobs"
	FieldFailed = "failed"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Generator struct {
//	    log *zap.SugaredLogger
//	}
//
//	func NewGenerator() *Generator {
//	    return &Generator{log: logger.ComponentLogger("codegen")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
//	svcLog := logger.ChildLogger(g.log, logger.FieldService, name)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
