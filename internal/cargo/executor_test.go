package cargo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCargo writes a shell script standing in for cargo. Every invocation
// appends its argument list to argsFile; pkgid answers with a token for
// srcDir and build runs the given shell body from the package directory.
func stubCargo(t *testing.T, srcDir, buildBody string) (cargoPath, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub toolchain requires sh")
	}

	dir := t.TempDir()
	cargoPath = filepath.Join(dir, "cargo")
	argsFile = filepath.Join(dir, "args")

	script := fmt.Sprintf(`#!/bin/sh
printf '%%s\n' "$*" >> %q
case "$1" in +*) shift;; esac
case "$1" in
pkgid)
	echo "path+file://%s#obkrnl@0.1.0"
	;;
build)
	%s
	;;
esac
`, argsFile, srcDir, buildBody)

	require.NoError(t, os.WriteFile(cargoPath, []byte(script), 0o755))
	return cargoPath, argsFile
}

// successStream returns a shell body emitting a canned successful build
// for the package rooted at srcDir, reporting executable.
func successStream(srcDir, executable string) string {
	return fmt.Sprintf(`pwd > cwd.txt
printf '%%s\n' '{"reason":"compiler-artifact","package_id":"registry+https://github.com/rust-lang/crates.io-index#libc@0.2.153","executable":null}'
printf '%%s\n' '{"reason":"compiler-artifact","package_id":"path+file://%s#obkrnl@0.1.0","executable":"%s"}'
printf '%%s\n' '{"reason":"build-finished","success":true}'`, srcDir, executable)
}

func TestExecutorPkgidTrimsOutput(t *testing.T) {
	src := t.TempDir()
	cargoPath, _ := stubCargo(t, src, "")
	e := NewExecutorPath(cargoPath)

	id, err := e.Pkgid(context.Background(), Request{Package: "obkrnl"})
	require.NoError(t, err)
	assert.Equal(t, "path+file://"+src+"#obkrnl@0.1.0", id)
}

func TestExecutorInvoke(t *testing.T) {
	src := t.TempDir()
	cargoPath, argsFile := stubCargo(t, src, successStream(src, "/target/debug/obkrnl"))
	e := NewExecutorPath(cargoPath)

	build, err := e.Invoke(context.Background(), Request{Package: "obkrnl", Target: "x86_64-unknown-none"})
	require.NoError(t, err)
	assert.Equal(t, src, build.SourceDir)
	assert.Equal(t, "/target/debug/obkrnl", build.Artifact.Executable)

	// The build must run from the package source directory.
	cwd, err := os.ReadFile(filepath.Join(src, "cwd.txt"))
	require.NoError(t, err)
	wantDir, err := filepath.EvalSymlinks(src)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(strings.TrimSpace(string(cwd)))
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(args)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "pkgid -p obkrnl", lines[0])
	assert.Equal(t, "build -p obkrnl --target x86_64-unknown-none --message-format json-render-diagnostics", lines[1])
}

func TestExecutorInvokeReleaseAndExtraArgs(t *testing.T) {
	src := t.TempDir()
	cargoPath, argsFile := stubCargo(t, src, successStream(src, "/target/release/obkrnl"))
	e := NewExecutorPath(cargoPath)

	_, err := e.Invoke(context.Background(), Request{
		Package:   "obkrnl",
		Toolchain: "nightly",
		Target:    "aarch64-unknown-none-softfloat",
		Release:   true,
		Args:      []string{"-Z", "build-std=core,alloc"},
	})
	require.NoError(t, err)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(args)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "+nightly pkgid -p obkrnl", lines[0])
	assert.Equal(t, "+nightly build -p obkrnl --target aarch64-unknown-none-softfloat -r -Z build-std=core,alloc --message-format json-render-diagnostics", lines[1])
}

func TestExecutorInvokeBuildFailure(t *testing.T) {
	src := t.TempDir()
	body := `printf '%s\n' '{"reason":"build-finished","success":false}'
exit 101`
	cargoPath, _ := stubCargo(t, src, body)
	e := NewExecutorPath(cargoPath)

	_, err := e.Invoke(context.Background(), Request{Package: "obkrnl"})
	assert.ErrorIs(t, err, ErrBuildFailed)
}

func TestExecutorInvokeCrashWithoutTerminal(t *testing.T) {
	src := t.TempDir()
	body := fmt.Sprintf(`printf '%%s\n' '{"reason":"compiler-artifact","package_id":"path+file://%s#obkrnl@0.1.0","executable":"/target/debug/obkrnl"}'
exit 1`, src)
	cargoPath, _ := stubCargo(t, src, body)
	e := NewExecutorPath(cargoPath)

	_, err := e.Invoke(context.Background(), Request{Package: "obkrnl"})
	assert.ErrorIs(t, err, ErrBuildFailed)
}

func TestExecutorInvokeCleanExitWithoutTerminal(t *testing.T) {
	src := t.TempDir()
	// Exit 0 without build-finished breaks the output contract.
	cargoPath, _ := stubCargo(t, src, "true")
	e := NewExecutorPath(cargoPath)

	_, err := e.Invoke(context.Background(), Request{Package: "obkrnl"})
	assert.ErrorIs(t, err, ErrBadEvent)
}

func TestExecutorInvokeNoMatchingArtifact(t *testing.T) {
	src := t.TempDir()
	body := `printf '%s\n' '{"reason":"compiler-artifact","package_id":"registry+https://github.com/rust-lang/crates.io-index#libc@0.2.153","executable":null}'
printf '%s\n' '{"reason":"build-finished","success":true}'`
	cargoPath, _ := stubCargo(t, src, body)
	e := NewExecutorPath(cargoPath)

	_, err := e.Invoke(context.Background(), Request{Package: "obkrnl"})
	assert.ErrorIs(t, err, ErrNoArtifact)
}
