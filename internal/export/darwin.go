package export

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/obhq/obbuild/internal/cargo"
	"github.com/obhq/obbuild/pkg/xos"
)

// darwinExporter lays out a macOS application bundle and ad-hoc signs it.
type darwinExporter struct {
	bundleName string
	signCmd    string
}

func newDarwin(o Options) darwinExporter {
	e := darwinExporter{bundleName: o.BundleName, signCmd: o.SignCommand}
	if e.bundleName == "" {
		e.bundleName = "Obliteration"
	}
	if e.signCmd == "" {
		e.signCmd = "codesign"
	}
	return e
}

func (e darwinExporter) Export(root string, kern, gui *cargo.Build) (string, error) {
	bundle := filepath.Join(root, e.bundleName+".app")
	contents := filepath.Join(bundle, "Contents")
	macos := filepath.Join(contents, "MacOS")
	resources := filepath.Join(contents, "Resources")

	for _, dir := range []string{macos, resources} {
		if err := xos.CreateDir(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	// The GUI binary is exported under the bundle name regardless of what
	// the toolchain called it.
	launch := filepath.Join(macos, e.bundleName)
	if err := xos.CopyExecutable(gui.Artifact.Executable, launch); err != nil {
		return "", fmt.Errorf("failed to copy GUI: %w", err)
	}

	kernDst := filepath.Join(resources, filepath.Base(kern.Artifact.Executable))
	if err := xos.CopyExecutable(kern.Artifact.Executable, kernDst); err != nil {
		return "", fmt.Errorf("failed to copy kernel: %w", err)
	}

	// Bundle manifest and icon ship with the GUI sources.
	plist := filepath.Join(gui.SourceDir, "Info.plist")
	if err := xos.CopyFile(plist, filepath.Join(contents, "Info.plist"), 0o644); err != nil {
		return "", fmt.Errorf("failed to copy Info.plist: %w", err)
	}
	icon := filepath.Join(gui.SourceDir, "resources", "obliteration.icns")
	if err := xos.CopyFile(icon, filepath.Join(resources, "obliteration.icns"), 0o644); err != nil {
		return "", fmt.Errorf("failed to copy icon: %w", err)
	}

	if err := e.sign(bundle, filepath.Join(gui.SourceDir, "entitlements.plist")); err != nil {
		return "", err
	}

	return launch, nil
}

// sign ad-hoc signs the whole bundle. An unsigned bundle will not launch
// on current macOS, so a signing failure fails the export.
func (e darwinExporter) sign(bundle, entitlements string) error {
	cmd := exec.Command(e.signCmd, "--force", "--sign", "-", "--entitlements", entitlements, bundle)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to sign %s: %w", bundle, err)
	}
	return nil
}
