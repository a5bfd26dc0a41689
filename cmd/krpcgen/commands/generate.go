package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Cahu/krpc-mars-terraformer/codegen"
	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate Rust modules from kRPC service definitions",
		Long: `Generate one Rust module per kRPC service.

path is a service file or a directory of service files (default: input.path
from the configuration). Every service of every file is written to
<out>/<snake_case(service)>.rs, followed by a mod.rs index when all of them
succeeded.

A service with a malformed type is skipped and reported; the others are
still written. A file that cannot be parsed is skipped as a whole.

Examples:
  krpcgen generate                                # Use krpcgen.toml
  krpcgen generate services/ -o src/services      # Explicit input and output
  krpcgen generate -m services.txt                # Files listed in a manifest
  krpcgen generate KRPC.SpaceCenter.json --index=false`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGenerate,
	}
	addGenerationFlags(cmd)
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	gen, err := s.generator()
	if err != nil {
		return err
	}
	inputs, err := s.inputs()
	if err != nil {
		return err
	}

	report, err := gen.Generate(cmd.Context(), inputs)
	if report == nil {
		return err
	}
	printReport(report)
	if err != nil {
		return errors.Newf("generation finished with %d failures", len(report.Failed))
	}
	return nil
}

// printReport shows written files and failures the way a user reads them
func printReport(r *codegen.Report) {
	verbosity := logger.Verbosity

	if logger.ShouldOutput(verbosity, logger.OutputProgress) {
		for _, w := range r.Written {
			pterm.Printf("  %s %s %s\n", pterm.LightGreen("✓"), pterm.White(w.Path), pterm.Gray("("+w.Service+")"))
		}
		if r.Index != "" {
			pterm.Printf("  %s %s\n", pterm.LightGreen("✓"), pterm.White(r.Index))
		}
	}

	for _, f := range r.Failed {
		pterm.Printf("  %s %s\n", pterm.Red("✗"), f.Error())
		if f.Hint != "" {
			pterm.Printf("    %s %s\n", pterm.Yellow("hint:"), f.Hint)
		}
	}

	summary := pterm.Sprintf("Generated %d of %d services from %d files", len(r.Written), r.Services, r.Documents)
	if logger.ShouldOutput(verbosity, logger.OutputTiming) {
		summary += pterm.Sprintf(" in %s", r.Duration.Round(time.Millisecond))
	}
	if r.OK() {
		pterm.Printf("%s %s\n", pterm.LightGreen("✓"), summary)
	} else {
		pterm.Printf("%s %s\n", pterm.Yellow("!"), summary)
	}
}
