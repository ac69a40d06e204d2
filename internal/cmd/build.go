package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/obhq/obbuild/internal/cargo"
	"github.com/obhq/obbuild/internal/config"
	"github.com/obhq/obbuild/internal/pipeline"
)

// debugDefault marks a bare --debug; the configured address is filled in
// once the configuration is loaded.
const debugDefault = "default"

var (
	buildRelease bool
	buildOutput  string
	buildDebug   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the kernel and GUI and assemble the bundle",
	Long: `Build the Obliteration kernel and GUI with cargo and assemble both into
the platform bundle under the output directory.

The kernel is built for the host CPU architecture; the default output
directory is recreated fresh on every run.

Examples:
  obbuild build                  # debug build into ./dist
  obbuild build -r               # optimized build
  obbuild build -o /tmp/out      # use an existing output directory as-is
  obbuild build --debug          # then launch the GUI, debugger on the default address
  obbuild build --debug=0.0.0.0:9000`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVarP(&buildRelease, "release", "r", false, "Enable optimization")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output directory (default: recreate ./dist)")
	buildCmd.Flags().StringVar(&buildDebug, "debug", "", "Re-launch the exported GUI with this debugger address")
	buildCmd.Flags().Lookup("debug").NoOptDefVal = debugDefault
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	executor, err := cargo.NewExecutor(true)
	if err != nil {
		return err
	}

	debug := buildDebug
	if debug == debugDefault {
		debug = cfg.Debug.Address
	}

	code, err := pipeline.Run(ctx, pipeline.Options{
		Config:    cfg,
		Cargo:     executor,
		Release:   buildRelease,
		Output:    buildOutput,
		DebugAddr: debug,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
