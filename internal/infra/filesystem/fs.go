// Package filesystem provides file access rooted at a project directory.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS reads and writes files relative to a root directory.
type FS struct {
	root string
}

// New creates an FS rooted at root. Absolute paths bypass the root.
func New(root string) *FS {
	return &FS{root: root}
}

// Root returns the root directory.
func (f *FS) Root() string {
	return f.root
}

// ReadFile returns the content of path.
func (f *FS) ReadFile(path string) ([]byte, error) {
	full, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// WriteFile replaces path by writing a temp file and renaming it over the
// original. Parent directories are created and an existing file keeps its mode.
func (f *FS) WriteFile(path string, data []byte) error {
	full, err := f.resolve(path)
	if err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(full); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// resolve joins a relative path to the root and rejects paths that escape it.
func (f *FS) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	full := filepath.Join(f.root, path)
	rel, err := filepath.Rel(f.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %s", path, f.root)
	}
	return full, nil
}
