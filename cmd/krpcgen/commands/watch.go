package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Cahu/krpc-mars-terraformer/codegen"
	"github.com/Cahu/krpc-mars-terraformer/config"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Regenerate modules when service files change",
		Long: `Generate once, then watch the service files and regenerate after every
change. Bursts of events (editors saving, checkouts) are coalesced.

Failures are reported and watching continues. Stop with Ctrl-C.

Examples:
  krpcgen watch services/ -o src/services
  krpcgen watch -m services.txt --debounce 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
	addGenerationFlags(cmd)
	cmd.Flags().Duration("debounce", config.DefaultDebounce, "Quiet period before regenerating")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")

	s, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	gen, err := s.generator()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	regenerate := regenerator(ctx, gen, s)
	if err := regenerate(nil); err != nil {
		return err
	}

	w, err := config.NewWatcher(s.cfg.Input.Extension, watchPaths(s.cfg)...)
	if err != nil {
		return err
	}
	defer w.Close()

	w.SetDebounce(debounce)
	w.Ignore(s.cfg.Output.Dir)
	w.OnChange(func(changed []string) error {
		for _, path := range changed {
			logger.Debugw("Service file changed", logger.FieldFile, path)
		}
		if err := regenerate(changed); err != nil {
			logger.Errorw("Regeneration failed", logger.FieldError, err)
			pterm.Printf("  %s %v\n", pterm.Red("✗"), err)
		}
		return nil
	})

	pterm.Printf("%s Watching %v (Ctrl-C to stop)\n", pterm.LightCyan("→"), watchPaths(s.cfg))
	err = w.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// watchPaths lists what to watch: the manifest and the files it names, or
// the input path
func watchPaths(cfg *config.Config) []string {
	if cfg.Input.Manifest == "" {
		return []string{cfg.Input.Path}
	}
	paths := []string{cfg.Input.Manifest}
	if files, err := codegen.ReadManifest(cfg.Input.Manifest); err == nil {
		paths = append(paths, files...)
	}
	return paths
}

// regenerator returns a function that resolves the inputs again (a
// manifest may have changed) and regenerates everything
func regenerator(ctx context.Context, gen *codegen.Generator, s *settings) func(changed []string) error {
	return func(changed []string) error {
		start := time.Now()
		inputs, err := s.inputs()
		if err != nil {
			return err
		}
		report, err := gen.Generate(ctx, inputs)
		if report == nil {
			return err
		}
		printReport(report)
		logger.Infow("Regenerated",
			logger.FieldCount, len(changed),
			logger.FieldDurationMS, time.Since(start).Milliseconds())
		return nil
	}
}
