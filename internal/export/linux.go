package export

import (
	"fmt"
	"path/filepath"

	"github.com/obhq/obbuild/internal/cargo"
	"github.com/obhq/obbuild/pkg/xos"
)

// linuxExporter produces the bin/share tree Linux packagers expect.
type linuxExporter struct{}

func (linuxExporter) Export(root string, kern, gui *cargo.Build) (string, error) {
	bin := filepath.Join(root, "bin")
	share := filepath.Join(root, "share")

	for _, dir := range []string{bin, share} {
		if err := xos.CreateDir(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	launch := filepath.Join(bin, filepath.Base(gui.Artifact.Executable))
	if err := xos.CopyExecutable(gui.Artifact.Executable, launch); err != nil {
		return "", fmt.Errorf("failed to copy GUI: %w", err)
	}

	kernDst := filepath.Join(share, filepath.Base(kern.Artifact.Executable))
	if err := xos.CopyExecutable(kern.Artifact.Executable, kernDst); err != nil {
		return "", fmt.Errorf("failed to copy kernel: %w", err)
	}

	return launch, nil
}
