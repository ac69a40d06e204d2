package export

import (
	"fmt"
	"path/filepath"

	"github.com/obhq/obbuild/internal/cargo"
	"github.com/obhq/obbuild/pkg/xos"
)

// windowsExporter produces a flat directory with the GUI at the top level
// and the kernel under share.
type windowsExporter struct{}

func (windowsExporter) Export(root string, kern, gui *cargo.Build) (string, error) {
	share := filepath.Join(root, "share")
	if err := xos.CreateDir(share, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", share, err)
	}

	launch := filepath.Join(root, filepath.Base(gui.Artifact.Executable))
	if err := xos.CopyExecutable(gui.Artifact.Executable, launch); err != nil {
		return "", fmt.Errorf("failed to copy GUI: %w", err)
	}

	kernDst := filepath.Join(share, filepath.Base(kern.Artifact.Executable))
	if err := xos.CopyExecutable(kern.Artifact.Executable, kernDst); err != nil {
		return "", fmt.Errorf("failed to copy kernel: %w", err)
	}

	return launch, nil
}
