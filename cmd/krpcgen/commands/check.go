package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check that generated modules are up to date",
		Long: `Check that the generated modules match the current service files.

This command renders every service into a temporary directory and compares
the result with the output directory, ignoring header metadata that changes
between generator builds. Nothing in the output directory is modified.

Exit codes:
  0 - Modules are up to date
  1 - Modules are out of date (diff shown)
  2 - Error during check

Examples:
  krpcgen check                  # Check using krpcgen.toml
  krpcgen check --diff=false     # Only list stale files`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
	addGenerationFlags(cmd)
	cmd.Flags().Bool("diff", true, "Show a unified diff for changed files")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	showDiff, _ := cmd.Flags().GetBool("diff")

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

	result, err := gen.Check(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	if result.UpToDate {
		pterm.Printf("%s %d modules in %s are up to date\n",
			pterm.LightGreen("✓"), len(result.Report.Written), s.cfg.Output.Dir)
		return nil
	}

	for _, f := range result.Files {
		pterm.Printf("  %s %s %s\n", pterm.Red("✗"), pterm.White(f.Path), pterm.Gray("("+f.Status.String()+")"))
		if showDiff && f.Diff != "" {
			pterm.Println(f.Diff)
		}
	}
	pterm.Printf("%s Run 'krpcgen generate' to update\n", pterm.Yellow("!"))
	return errors.Wrapf(ErrStale, "%d files", len(result.Files))
}
