package cargo

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
)

// SourceDir extracts the package source directory from a cargo pkgid
// token such as "path+file:///home/user/obliteration/src/obkrnl#0.1.0".
// This is a pure string transform; no filesystem or network access.
func SourceDir(id string) (string, error) {
	return resolveSourceDir(id, runtime.GOOS)
}

// resolveSourceDir is SourceDir parameterized by GOOS so both path
// families are testable on one host.
func resolveSourceDir(id, goos string) (string, error) {
	spec := id

	// The fragment names the package and version, not its location.
	if i := strings.IndexByte(spec, '#'); i >= 0 {
		spec = spec[:i]
	}

	// Newer cargo prefixes the URL with a source kind ("path+file://...").
	if i := strings.IndexByte(spec, '+'); i >= 0 {
		spec = spec[i+1:]
	}

	u, err := url.Parse(spec)
	if err != nil {
		return "", fmt.Errorf("pkgid %q: %w", id, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("pkgid %q: unexpected scheme %q", id, u.Scheme)
	}

	// A file URL splits into host and path components; the source
	// directory is both joined back together.
	dir := u.Host + u.Path
	if dir == "" {
		return "", fmt.Errorf("pkgid %q: no path", id)
	}

	// On Windows the URL path carries a spurious separator in front of
	// the drive letter (file:///C:/src parses to /C:/src).
	if goos == "windows" && len(dir) >= 3 && dir[0] == '/' && dir[2] == ':' {
		dir = dir[1:]
	}

	return dir, nil
}
