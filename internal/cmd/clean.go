package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/obhq/obbuild/internal/config"
)

var (
	cleanCache bool
	cleanYes   bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the output directory and optionally the cargo build caches",
	Long: `Remove the output directory produced by a previous build.

Use --cache to additionally run cargo clean for the kernel and GUI
packages. Deletion asks for confirmation unless --yes is given.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanCache, "cache", false, "Also run cargo clean for each package")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runClean(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	root := cfg.Build.Output

	if !cleanYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Remove %s", root),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				fmt.Println("Cancelled.")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
	}

	if _, err := os.Stat(root); err == nil {
		fmt.Printf("🗑️  Removing %s...\n", root)
		if err := os.RemoveAll(root); err != nil {
			return fmt.Errorf("failed to remove %s: %w", root, err)
		}
	}

	if cleanCache {
		for _, pkg := range []string{cfg.Kernel.Package, cfg.GUI.Package} {
			fmt.Printf("🗑️  Running cargo clean -p %s...\n", pkg)

			c := exec.Command("cargo", "clean", "-p", pkg)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("cargo clean %s failed: %w", pkg, err)
			}
		}
	}

	fmt.Println("✅ Clean completed")
	return nil
}
