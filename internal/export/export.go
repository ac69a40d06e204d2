// Package export assembles built artifacts into the distributable layout
// each OS expects.
package export

import (
	"fmt"

	"github.com/obhq/obbuild/internal/cargo"
)

// Exporter produces a self-contained directory tree under root from a
// kernel build and a GUI build, and returns the absolute path of the
// copied GUI executable. That returned path is the one to launch; it may
// not share a base name with the pre-export artifact. Implementations
// copy, never move: the toolchain's build cache still owns the originals.
type Exporter interface {
	Export(root string, kern, gui *cargo.Build) (string, error)
}

// Options configure exporter construction.
type Options struct {
	// BundleName is the user-facing product name: the application bundle
	// directory on macOS and the name the GUI binary is exported under
	// inside it. Empty means Obliteration.
	BundleName string

	// SignCommand overrides the code-signing binary on macOS. Empty
	// means codesign.
	SignCommand string
}

// exporters maps a GOOS value to an exporter constructor. Per-OS behavior
// lives entirely behind this lookup.
var exporters = map[string]func(Options) Exporter{
	"darwin":  func(o Options) Exporter { return newDarwin(o) },
	"linux":   func(Options) Exporter { return linuxExporter{} },
	"windows": func(Options) Exporter { return windowsExporter{} },
}

// New returns the exporter for the given OS.
func New(goos string, opts Options) (Exporter, error) {
	factory, ok := exporters[goos]
	if !ok {
		return nil, fmt.Errorf("OS %s is not supported", goos)
	}
	return factory(opts), nil
}
