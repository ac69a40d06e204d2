//go:build windows

// Package xos provides cross-platform atomic file operations.
// On Windows, rename over an existing file is not always possible, so a
// temp file in the target directory is written first and the target
// replaced explicitly.
package xos

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data to the named file via a temp file and rename
// within the same directory.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tempName, perm); err != nil {
		return err
	}

	// The target must be removed before rename can replace it.
	if _, err := os.Stat(filename); err == nil {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	if err := os.Rename(tempName, filename); err != nil {
		return err
	}

	success = true
	return nil
}

// CreateDir creates a directory and all necessary parents.
func CreateDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// CopyFile copies src to dst with the given permissions.
// The source file is left untouched.
func CopyFile(src, dst string, perm os.FileMode) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return WriteFile(dst, content, perm)
}

// CopyExecutable copies src to dst, marking it executable.
func CopyExecutable(src, dst string) error {
	return CopyFile(src, dst, 0o755)
}
