// Package commands implements the krpcgen command line.
package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

// Exit codes
const (
	ExitOK    = 0
	ExitStale = 1 // check found out-of-date files
	ExitError = 2
)

// ErrStale is returned by check when generated files are out of date
var ErrStale = errors.New("generated files are out of date")

// NewRootCmd builds the krpcgen command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "krpcgen",
		Short: "Generate Rust bindings for kRPC services",
		Long: `krpcgen - Generate Rust client bindings from kRPC service definitions.

Each kRPC service described in a JSON service file becomes one Rust module
with a struct per class, an enum per enumeration and a function per
procedure. Cross-service references are imported from sibling modules.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (KRPCGEN_* prefix, e.g. KRPCGEN_OUTPUT_DIR)
3. File given with --config
4. Project config (krpcgen.toml, searched upwards from the working directory)
5. User config (~/.config/krpcgen/krpcgen.toml)
6. Default values

Available commands:
  generate - Write one module per service
  check    - Verify generated modules are up to date
  watch    - Regenerate when service files change
  inspect  - Show the rendering context of a service file
  init     - Write a starter krpcgen.toml
  config   - Show the effective configuration

Examples:
  krpcgen generate services/             # Every *.json in services/
  krpcgen generate KRPC.SpaceCenter.json -o src/services
  krpcgen check                          # Fails when modules are stale
  krpcgen inspect KRPC.UI.json --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, _ := cmd.Flags().GetCount("verbose")
			jsonLog, _ := cmd.Flags().GetBool("json-log")
			if err := logger.Initialize(jsonLog, verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			pterm.SetDefaultOutput(cmd.OutOrStdout())
			logger.Debugw("Logger initialized", "level", logger.LevelName(verbosity), "command", cmd.Name())
			return nil
		},
	}

	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	root.PersistentFlags().StringP("config", "c", "", "Config file merged over user and project config")
	root.PersistentFlags().Bool("json-log", false, "Write logs as JSON to stderr")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrStale):
		return ExitStale
	default:
		return ExitError
	}
}

// PrintError writes err and its hints for a human reader
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %v\n", pterm.Red("Error:"), err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  %s %s\n", pterm.Yellow("hint:"), hint)
	}
}
