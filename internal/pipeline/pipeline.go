// Package pipeline drives the full build-and-package flow: build the
// kernel and GUI with cargo, export both into the platform bundle, and
// optionally re-launch the exported GUI for debugging.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/obhq/obbuild/internal/cargo"
	"github.com/obhq/obbuild/internal/config"
	"github.com/obhq/obbuild/internal/export"
)

// Options configure one pipeline run.
type Options struct {
	Config  *config.Config
	Cargo   *cargo.Executor
	Release bool

	// Output overrides the configured output root and is used as-is.
	// When empty, the configured default is deleted and recreated so no
	// stale files from a previous run survive.
	Output string

	// DebugAddr, when set, re-launches the exported GUI with
	// --debug <addr>; the run then reports the GUI's exit code.
	DebugAddr string

	// GOOS and GOARCH default to the host values. Tests override them.
	GOOS   string
	GOARCH string

	// SignCommand overrides the macOS signing binary.
	SignCommand string
}

// Run executes the pipeline and returns the process exit code to report.
// The steps are strictly sequential; each cargo invocation blocks until
// its event stream ends and its exit status is known.
func Run(ctx context.Context, opts Options) (int, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	goarch := opts.GOARCH
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	kernReq, err := KernelRequest(cfg, goarch, opts.Release)
	if err != nil {
		return 1, err
	}

	fmt.Printf("🔨 Building %s...\n", kernReq.Package)
	kern, err := opts.Cargo.Invoke(ctx, kernReq)
	if err != nil {
		return 1, err
	}

	guiReq := cargo.Request{Package: cfg.GUI.Package, Release: opts.Release}
	fmt.Printf("🔨 Building %s...\n", guiReq.Package)
	gui, err := opts.Cargo.Invoke(ctx, guiReq)
	if err != nil {
		return 1, err
	}

	root, err := prepareOutput(cfg, opts.Output)
	if err != nil {
		return 1, err
	}

	exporter, err := export.New(goos, export.Options{
		BundleName:  cfg.Project.Name,
		SignCommand: opts.SignCommand,
	})
	if err != nil {
		return 1, err
	}

	fmt.Printf("📦 Exporting to %s...\n", root)
	launch, err := exporter.Export(root, kern, gui)
	if err != nil {
		return 1, err
	}
	fmt.Printf("✅ Bundle ready: %s\n", launch)

	if opts.DebugAddr == "" {
		return 0, nil
	}

	fmt.Printf("🐛 Launching %s on %s...\n", launch, opts.DebugAddr)
	return relaunch(ctx, launch, opts.DebugAddr)
}

// KernelRequest selects the kernel build flags for the given CPU
// architecture. The bare-metal kernel needs a per-architecture target
// triple, and on ARM a nightly toolchain able to rebuild core and alloc
// for a target with no prebuilt standard library.
func KernelRequest(cfg *config.Config, goarch string, release bool) (cargo.Request, error) {
	switch goarch {
	case "arm64":
		return cargo.Request{
			Package:   cfg.Kernel.Package,
			Toolchain: "nightly",
			Target:    "aarch64-unknown-none-softfloat",
			Release:   release,
			Args:      []string{"-Z", "build-std=core,alloc"},
		}, nil
	case "amd64":
		return cargo.Request{
			Package: cfg.Kernel.Package,
			Target:  "x86_64-unknown-none",
			Release: release,
		}, nil
	default:
		return cargo.Request{}, fmt.Errorf("architecture %s is not supported", goarch)
	}
}

// prepareOutput returns the output root for this run. A caller-supplied
// override is used exactly as given; the configured default is wiped and
// recreated.
func prepareOutput(cfg *config.Config, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	root := cfg.Build.Output
	if err := os.RemoveAll(root); err != nil {
		return "", fmt.Errorf("failed to remove %s: %w", root, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", root, err)
	}
	return root, nil
}

// relaunch runs the exported GUI with the debug address and propagates
// its exit code. A non-zero GUI exit is the session's result, not an
// error of the pipeline.
func relaunch(ctx context.Context, launch, addr string) (int, error) {
	cmd := exec.CommandContext(ctx, launch, "--debug", addr)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("failed to launch %s: %w", launch, err)
	}
	return 0, nil
}
