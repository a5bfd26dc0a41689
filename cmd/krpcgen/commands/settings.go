package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Cahu/krpc-mars-terraformer/codegen"
	"github.com/Cahu/krpc-mars-terraformer/config"
	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

// flagKeys maps command-line flags onto configuration keys
var flagKeys = map[string]string{
	"out":       "output.dir",
	"ext":       "output.extension",
	"index":     "output.index",
	"jobs":      "generate.jobs",
	"templates": "templates.dir",
	"manifest":  "input.manifest",
	"input-ext": "input.extension",
}

// settings is the resolved configuration of one invocation
type settings struct {
	cfg     *config.Config
	v       *viper.Viper
	sources []config.Source
}

// addGenerationFlags registers the flags shared by commands that render
func addGenerationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("out", "o", "", "Output directory for generated modules")
	f.String("ext", "", "Extension of generated files (default .rs)")
	f.Bool("index", true, "Write a mod.rs listing every generated module")
	f.IntP("jobs", "j", 0, "Services rendered in parallel (0 = number of CPUs)")
	f.String("templates", "", "Directory of templates overriding the embedded ones")
	f.StringP("manifest", "m", "", "File listing service files, one per line")
	f.String("input-ext", "", "Extension of service files during directory discovery (default .json)")
}

// loadSettings merges every configuration source, the command's flags and
// an optional positional input path, then validates the result
func loadSettings(cmd *cobra.Command, args []string) (*settings, error) {
	file, _ := cmd.Flags().GetString("config")
	loader := &config.Loader{File: file}

	v, err := loader.Viper()
	if err != nil {
		return nil, err
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "failed to bind flag --%s", name)
			}
		}
	}

	if len(args) > 0 {
		v.Set("input.path", args[0])
		// an explicit path replaces a configured manifest
		if !cmd.Flags().Changed("manifest") {
			v.Set("input.manifest", "")
		}
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Log.JSON && !logger.JSONOutput {
		if err := logger.Initialize(true, logger.Verbosity); err != nil {
			return nil, errors.Wrap(err, "failed to initialize logger")
		}
	}

	s := &settings{cfg: cfg, v: v, sources: loader.Sources()}
	if logger.ShouldOutput(logger.Verbosity, logger.OutputConfig) {
		for _, src := range s.sources {
			pterm.Printf("  %s %s %s\n", pterm.Gray("config"), pterm.Yellow(src.Kind), src.Path)
		}
	}
	return s, nil
}

// generator builds a Generator from the settings
func (s *settings) generator() (*codegen.Generator, error) {
	return codegen.New(codegen.OptionsFromConfig(s.cfg))
}

// inputs resolves the service files to compile; finding none is an error
func (s *settings) inputs() ([]string, error) {
	in := s.cfg.Input
	files, err := codegen.Inputs(in.Path, in.Manifest, in.Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.WithHint(
			errors.Newf("no service files found in %s", in.Path),
			"pass a service file or directory, or set input.path in krpcgen.toml",
		)
	}
	return files, nil
}
