// Package cargo drives the Rust toolchain as a child process and consumes
// its line-delimited JSON event stream.
package cargo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Request describes one package build.
type Request struct {
	Package   string   // cargo package name
	Toolchain string   // optional toolchain channel override (+<channel>)
	Target    string   // optional cross-compilation target triple
	Release   bool     // enable optimization
	Args      []string // extra cargo arguments, passed through in order
}

// Build is the result of one successful invocation: where the package
// lives and what it produced.
type Build struct {
	SourceDir string
	Artifact  Artifact
}

// Executor handles cargo command execution.
type Executor struct {
	cargoPath string
	progress  bool
}

// NewExecutor locates cargo and creates an executor. progress enables a
// spinner on stderr while builds run.
func NewExecutor(progress bool) (*Executor, error) {
	path, err := exec.LookPath("cargo")
	if err != nil {
		return nil, fmt.Errorf("cargo not found: %w (install Rust from https://rustup.rs)", err)
	}
	return &Executor{cargoPath: path, progress: progress}, nil
}

// NewExecutorPath creates an executor that runs the given binary instead
// of looking cargo up on PATH. Tests substitute a stub toolchain here.
func NewExecutorPath(path string) *Executor {
	return &Executor{cargoPath: path}
}

// Pkgid queries cargo for the package identity token.
func (e *Executor) Pkgid(ctx context.Context, req Request) (string, error) {
	args := append(e.channelArgs(req), "pkgid", "-p", req.Package)

	cmd := exec.CommandContext(ctx, e.cargoPath, args...)
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("cargo pkgid %s: %w", req.Package, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Invoke builds the requested package and returns its source directory and
// artifact descriptor. It blocks until cargo's event stream ends and the
// process exit status is known. A failed build is fatal to the caller;
// rebuilding is the user's decision, so nothing is retried here.
func (e *Executor) Invoke(ctx context.Context, req Request) (*Build, error) {
	id, err := e.Pkgid(ctx, req)
	if err != nil {
		return nil, err
	}
	dir, err := SourceDir(id)
	if err != nil {
		return nil, err
	}

	args := append(e.channelArgs(req), "build", "-p", req.Package)
	if req.Target != "" {
		args = append(args, "--target", req.Target)
	}
	if req.Release {
		args = append(args, "-r")
	}
	args = append(args, req.Args...)
	args = append(args, "--message-format", "json-render-diagnostics")

	cmd := exec.CommandContext(ctx, e.cargoPath, args...)
	// Run from the package source so cargo's relative-path behavior does
	// not depend on where obbuild itself was started.
	cmd.Dir = dir
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("cargo build %s: %w", req.Package, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("cargo build %s: %w", req.Package, err)
	}

	var bar *progressbar.ProgressBar
	var onArtifact func()
	if e.progress {
		bar = buildSpinner(req.Package)
		onArtifact = func() { _ = bar.Add(1) }
	}

	artifact, scanErr := scanArtifact(stdout, id, onArtifact)

	// Whatever cargo printed after the terminal event is noise, but the
	// pipe must drain before Wait or a blocked child never exits.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if bar != nil {
		_ = bar.Finish()
	}

	switch {
	case scanErr == nil:
		return &Build{SourceDir: dir, Artifact: *artifact}, nil
	case errors.Is(scanErr, errStreamEnded):
		if waitErr != nil {
			return nil, fmt.Errorf("%w: cargo build %s: %v", ErrBuildFailed, req.Package, waitErr)
		}
		return nil, fmt.Errorf("%w: cargo build %s ended without build-finished", ErrBadEvent, req.Package)
	default:
		return nil, fmt.Errorf("cargo build %s: %w", req.Package, scanErr)
	}
}

// channelArgs returns the toolchain selector, which must precede the
// cargo subcommand.
func (e *Executor) channelArgs(req Request) []string {
	if req.Toolchain != "" {
		return []string{"+" + req.Toolchain}
	}
	return nil
}

// buildSpinner returns an indeterminate spinner that ticks once per
// compiled crate.
func buildSpinner(pkg string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Building %s", pkg)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}
