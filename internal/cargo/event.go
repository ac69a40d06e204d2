package cargo

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrBuildFailed indicates cargo reported a failed build or exited
	// abnormally before reporting anything.
	ErrBuildFailed = errors.New("build failed")

	// ErrBadEvent indicates cargo's event stream violated its contract:
	// a line that is not valid JSON, or a stream that ended without a
	// terminal event.
	ErrBadEvent = errors.New("malformed build event")

	// ErrNoArtifact indicates cargo reported success without ever
	// emitting an artifact for the requested package.
	ErrNoArtifact = errors.New("no artifact reported")
)

// errStreamEnded reports EOF before a terminal event. The caller decides
// whether that is a toolchain crash or a protocol violation based on the
// process exit status.
var errStreamEnded = errors.New("event stream ended")

// Event reasons emitted by cargo with --message-format json-render-diagnostics.
// Reasons other than these two are valid but carry nothing we consume.
const (
	reasonArtifact = "compiler-artifact"
	reasonFinished = "build-finished"
)

// Diagnostic lines for large crates can far exceed bufio.Scanner's 64 KiB
// default token size.
const maxEventSize = 4 * 1024 * 1024

// header carries the discriminator shared by every event line.
type header struct {
	Reason string `json:"reason"`
}

// artifactEvent is the compiler-artifact shape, reduced to the fields we
// consume.
type artifactEvent struct {
	PackageID  string `json:"package_id"`
	Executable string `json:"executable"`
}

// finishedEvent is the terminal build-finished shape.
type finishedEvent struct {
	Success bool `json:"success"`
}

// Artifact identifies one built executable.
type Artifact struct {
	PackageID  string
	Executable string
}

// scanArtifact consumes r line by line until the terminal build-finished
// event and returns the last compiler-artifact whose package ID equals
// pkgid. Cargo interleaves events for transitive dependencies, so events
// for other packages are skipped, and a rebuild may re-emit the same
// package, so the last capture wins. onArtifact, when non-nil, is called
// once per compiler-artifact event regardless of package.
func scanArtifact(r io.Reader, pkgid string, onArtifact func()) (*Artifact, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var artifact *Artifact
	for sc.Scan() {
		line := sc.Bytes()

		var h header
		if err := json.Unmarshal(line, &h); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadEvent, err)
		}

		switch h.Reason {
		case reasonFinished:
			var ev finishedEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadEvent, err)
			}
			if !ev.Success {
				return nil, ErrBuildFailed
			}
			if artifact == nil {
				return nil, fmt.Errorf("%w for %s", ErrNoArtifact, pkgid)
			}
			return artifact, nil
		case reasonArtifact:
			var ev artifactEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadEvent, err)
			}
			if onArtifact != nil {
				onArtifact()
			}
			if ev.PackageID == pkgid {
				artifact = &Artifact{PackageID: ev.PackageID, Executable: ev.Executable}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	return nil, errStreamEnded
}
