//go:build !windows

// Package xos provides cross-platform atomic file operations.
// It uses atomic rename operations to prevent partially written files
// from surviving a crash.
package xos

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
)

// WriteFile writes data to the named file atomically using rename.
// If the file does not exist, WriteFile creates it with permissions perm;
// otherwise WriteFile replaces it.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}

// CreateDir creates a directory and all necessary parents.
func CreateDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// CopyFile copies src to dst atomically with the given permissions.
// The source file is left untouched.
func CopyFile(src, dst string, perm os.FileMode) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return WriteFile(dst, content, perm)
}

// CopyExecutable copies src to dst atomically, marking it executable.
func CopyExecutable(src, dst string) error {
	return CopyFile(src, dst, 0o755)
}
