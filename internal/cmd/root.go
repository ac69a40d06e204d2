package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "obbuild",
	Short: "Build Obliteration and assemble the distributable bundle",
	Long: `obbuild drives the Rust toolchain to build the Obliteration kernel and
GUI, then assembles both into the layout your OS expects: an application
bundle on macOS, a bin/share tree on Linux, a flat directory on Windows.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

// ExitError carries a specific process exit code through cobra's error
// return, so a re-launched debug session's exit status can be propagated
// verbatim.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
