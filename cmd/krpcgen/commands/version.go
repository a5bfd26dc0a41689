package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cahu/krpc-mars-terraformer/display"
	"github.com/Cahu/krpc-mars-terraformer/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show krpcgen version information",
		Long:  `Display version, build time, commit hash, and platform information for the krpcgen binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			info := version.Get()

			if display.ShouldOutputJSON(cmd) {
				data, err := display.Marshal(info, display.JSON)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			fmt.Fprintln(out, info.String())
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
	return cmd
}
