package commands

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Cahu/krpc-mars-terraformer/config"
	"github.com/Cahu/krpc-mars-terraformer/errors"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter krpcgen.toml",
		Long: `Write krpcgen.toml with every setting at its default value into dir
(default: the working directory). An existing file is kept unless --force
is given, in which case it is rotated to a .back1 backup first.

Examples:
  krpcgen init
  krpcgen init crates/krpc-client --input services --out src/services`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing krpcgen.toml")
	cmd.Flags().String("input", "", "Service file or directory to record as input.path")
	cmd.Flags().StringP("out", "o", "", "Output directory to record as output.dir")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	input, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("out")

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path := filepath.Join(dir, config.ProjectConfigName)

	if _, err := os.Stat(path); err == nil && !force {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"use --force to overwrite it (a backup is kept)",
		)
	}

	cfg := config.Default()
	if input != "" {
		cfg.Input.Path = input
	}
	if out != "" {
		cfg.Output.Dir = out
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}
	pterm.Printf("%s Wrote %s\n", pterm.LightGreen("✓"), path)
	return nil
}
