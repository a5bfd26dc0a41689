package logger

// OutputCategory defines a category of CLI output that can be enabled/disabled.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information the commands print.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Written files, check verdicts
	OutputErrors                        // Errors with hints

	// Level 1 (-v)
	OutputProgress // Per-service progress
	OutputConfig   // Which config files were merged

	// Level 2 (-vv)
	OutputTiming // Per-service and total durations

	// Level 3 (-vvv)
	OutputContextDump // Full rendering contexts
)

var categoryLevels = map[OutputCategory]int{
	OutputResults:     VerbosityUser,
	OutputErrors:      VerbosityUser,
	OutputProgress:    VerbosityInfo,
	OutputConfig:      VerbosityInfo,
	OutputTiming:      VerbosityDebug,
	OutputContextDump: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:     "results",
	OutputErrors:      "errors",
	OutputProgress:    "progress",
	OutputConfig:      "config",
	OutputTiming:      "timing",
	OutputContextDump: "context-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
