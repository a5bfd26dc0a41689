package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cahu/krpc-mars-terraformer/codegen"
	"github.com/Cahu/krpc-mars-terraformer/codegen/rust"
	"github.com/Cahu/krpc-mars-terraformer/display"
	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/idl"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the rendering context of a service file",
		Long: `Show what krpcgen derives from a service file before rendering: resolved
Rust types, cross-service dependencies, methods split from free procedures
and enumeration values.

With --render, print the generated module instead.

Examples:
  krpcgen inspect KRPC.SpaceCenter.json
  krpcgen inspect KRPC.SpaceCenter.json --service SpaceCenter --format json
  krpcgen inspect KRPC.UI.json --render`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}
	cmd.Flags().StringP("service", "s", "", "Only this service")
	cmd.Flags().StringP("format", "f", "yaml", "Output format: yaml, json")
	cmd.Flags().Bool("render", false, "Print the generated module instead of the context")
	cmd.Flags().String("templates", "", "Directory of templates overriding the embedded ones")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	serviceName, _ := cmd.Flags().GetString("service")
	renderOnly, _ := cmd.Flags().GetBool("render")
	templates, _ := cmd.Flags().GetString("templates")
	out := cmd.OutOrStdout()

	format, err := display.FormatFlag(cmd, "format", display.YAML, display.JSON)
	if err != nil {
		return err
	}

	path := args[0]
	file, err := idl.Load(path)
	if err != nil {
		return err
	}

	names, err := selectServices(file, serviceName)
	if err != nil {
		return err
	}

	gen, err := codegen.New(codegen.Options{TemplatesDir: templates})
	if err != nil {
		return err
	}

	if renderOnly {
		for _, name := range names {
			code, err := gen.RenderService(file.Services[name], path)
			if err != nil {
				return err
			}
			if _, err := out.Write(code); err != nil {
				return errors.WrapIO(err, "failed to write output")
			}
		}
		return nil
	}

	contexts := make([]*rust.ServiceContext, 0, len(names))
	for _, name := range names {
		ctx, err := gen.Context(file.Services[name], path)
		if err != nil {
			return err
		}
		contexts = append(contexts, ctx)
	}

	data, err := display.Marshal(contexts, format)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return errors.WrapIO(err, "failed to write output")
	}
	return nil
}

// selectServices returns the sorted service names of file, or only name
func selectServices(file *idl.ServiceFile, name string) ([]string, error) {
	available := file.ServiceNames()
	if name == "" {
		return available, nil
	}
	if _, ok := file.Services[name]; !ok {
		return nil, errors.WithHintf(
			errors.Newf("service %s not found in %s", name, file.Path),
			"available services: %s", strings.Join(available, ", "),
		)
	}
	return []string{name}, nil
}
