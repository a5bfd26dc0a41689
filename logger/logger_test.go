package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		wantLevel  zapcore.Level
	}{
		{"JSON output mode", true, 0, zapcore.WarnLevel},
		{"Console output mode", false, 0, zapcore.WarnLevel},
		{"Console verbose", false, 1, zapcore.InfoLevel},
		{"JSON debug", true, 2, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := Replace(zap.NewNop())
			defer restore()

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.Equal(t, tt.verbosity, Verbosity)
			assert.True(t, Logger.Desugar().Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, Logger.Desugar().Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestReplaceRestores(t *testing.T) {
	before := Logger
	restore := Replace(zaptest.NewLogger(t))
	assert.NotSame(t, before, Logger)
	restore()
	assert.Same(t, before, Logger)
}

func TestStructuredHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Debugw("resolving", FieldService, "SpaceCenter")
	Infow("wrote file", FieldOutput, "out/space_center.rs")
	Warnw("method without receiver", FieldProcedure, "Vessel_Nothing")
	Errorw("service failed", FieldError, "boom")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "SpaceCenter", entries[0].ContextMap()[FieldService])
	assert.Equal(t, "out/space_center.rs", entries[1].ContextMap()[FieldOutput])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestComponentLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	log := ChildLogger(ComponentLogger("codegen"), FieldService, "Demo")
	log.Infow("rendered", FieldCount, 3)

	entries := logs.FilterLoggerName("codegen").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "Demo", ctx[FieldService])
	assert.EqualValues(t, 3, ctx[FieldCount])
}

func TestCleanupDoesNotPanic(t *testing.T) {
	restore := Replace(zap.NewNop())
	defer restore()
	assert.NotPanics(t, Cleanup)
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(-1))
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "Trace (-vvv+)", LevelName(5))
	assert.Equal(t, "Unknown", LevelName(-2))
}

func TestShouldOutput(t *testing.T) {
	tests := []struct {
		verbosity int
		category  OutputCategory
		want      bool
	}{
		{VerbosityUser, OutputResults, true},
		{VerbosityUser, OutputErrors, true},
		{VerbosityUser, OutputProgress, false},
		{VerbosityInfo, OutputProgress, true},
		{VerbosityInfo, OutputTiming, false},
		{VerbosityDebug, OutputTiming, true},
		{VerbosityDebug, OutputContextDump, false},
		{VerbosityTrace, OutputContextDump, true},
		{VerbosityTrace, OutputCategory(99), true},
		{VerbosityDebug, OutputCategory(99), false},
	}

	for _, tt := range tests {
		t.Run(CategoryName(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldOutput(tt.verbosity, tt.category))
		})
	}
}
