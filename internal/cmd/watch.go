package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/obhq/obbuild/internal/cargo"
	"github.com/obhq/obbuild/internal/config"
	"github.com/obhq/obbuild/internal/pipeline"
	"github.com/obhq/obbuild/internal/watch"
)

var (
	watchRelease bool
	watchOutput  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild and re-export whenever kernel or GUI sources change",
	Long: `Watch the kernel and GUI source trees and re-run the build-and-export
pipeline on every change. Stop with Ctrl-C.

Examples:
  obbuild watch            # debug builds into ./dist on every change
  obbuild watch -r         # optimized builds`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&watchRelease, "release", "r", false, "Enable optimization")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Output directory (default: recreate ./dist)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

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

	opts := pipeline.Options{
		Config:  cfg,
		Cargo:   executor,
		Release: watchRelease,
		Output:  watchOutput,
	}

	// One full run up front; watch failures keep the loop alive since the
	// next save may fix them.
	if _, err := pipeline.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Build failed: %v\n", err)
	}

	dirs, err := sourceDirs(ctx, executor, cfg)
	if err != nil {
		return err
	}

	watcher, err := watch.New(watch.DefaultConfig(dirs...))
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("👀 Watching %d directories for changes...\n", len(dirs))

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped.")
			return nil
		case ev := <-watcher.Events():
			fmt.Printf("♻️  %s %s, rebuilding...\n", ev.Path, ev.Type)
			if _, err := pipeline.Run(ctx, opts); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  Build failed: %v\n", err)
			}
		case err := <-watcher.Errors():
			fmt.Fprintf(os.Stderr, "⚠️  Watcher error: %v\n", err)
		}
	}
}

// sourceDirs resolves the source directory of each watched package.
func sourceDirs(ctx context.Context, executor *cargo.Executor, cfg *config.Config) ([]string, error) {
	var dirs []string
	for _, pkg := range []string{cfg.Kernel.Package, cfg.GUI.Package} {
		id, err := executor.Pkgid(ctx, cargo.Request{Package: pkg})
		if err != nil {
			return nil, err
		}
		dir, err := cargo.SourceDir(id)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}
