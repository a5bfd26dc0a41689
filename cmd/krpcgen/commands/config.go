package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Cahu/krpc-mars-terraformer/config"
	"github.com/Cahu/krpc-mars-terraformer/display"
	"github.com/Cahu/krpc-mars-terraformer/errors"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective krpcgen configuration",
		Long: `Display the configuration krpcgen would use in the current directory.

Examples:
  krpcgen config show                  # Effective settings as TOML
  krpcgen config show --format json
  krpcgen config get output.dir
  krpcgen config where                 # Which files were merged`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	show.Flags().String("format", "toml", "Output format: toml, json, yaml")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  "Get a configuration value using dot notation (e.g. output.dir, generate.jobs)",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	}

	where := &cobra.Command{
		Use:   "where",
		Short: "Show where configuration is loaded from",
		Args:  cobra.NoArgs,
		RunE:  runConfigWhere,
	}

	cmd.AddCommand(show, get, where)
	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, err := display.FormatFlag(cmd, "format", display.TOML, display.JSON, display.YAML)
	if err != nil {
		return err
	}

	s, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}

	data, err := display.Marshal(s.cfg, format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format != display.JSON {
		fmt.Fprintln(out, "# krpcgen configuration")
	}
	_, err = out.Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	s, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}
	if !s.v.IsSet(key) {
		return errors.WithHint(
			errors.Newf("configuration key %q not found", key),
			"keys use dot notation, e.g. output.dir; see 'krpcgen config show'",
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), s.v.Get(key))
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}

	pterm.Println("Configuration cascade (later overrides earlier):")
	pterm.Println("  1. [DEFAULT]  Built-in defaults")
	pterm.Println("  2. [USER]     ~/.config/krpcgen/" + config.ProjectConfigName)
	pterm.Println("  3. [PROJECT]  ./" + config.ProjectConfigName + " (searches up directories)")
	pterm.Println("  4. [FILE]     --config")
	pterm.Println("  5. [ENV]      " + config.EnvPrefix + "_* environment variables")
	pterm.Println("  6. [FLAGS]    command line flags")
	pterm.Println()

	if len(s.sources) == 0 {
		pterm.Println("No configuration files found, using defaults")
		return nil
	}
	pterm.Println("Merged files:")
	for _, src := range s.sources {
		pterm.Printf("  %s %s\n", pterm.Yellow(strings.ToUpper(src.Kind)), src.Path)
	}
	return nil
}
