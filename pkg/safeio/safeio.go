package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a path resolves outside its base directory.
var ErrOutsideBase = errors.New("file path is outside base directory")

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returns paths with forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	if strings.Contains(c, "..") {
		return "", errors.New("path traversal detected")
	}
	return filepath.ToSlash(c), nil
}

// ContainedPath resolves filePath against baseDir and verifies the result does
// not escape baseDir. Relative paths are taken relative to baseDir.
func ContainedPath(baseDir, filePath string) (string, error) {
	baseDirAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", errors.New("failed to resolve base directory")
	}
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(baseDirAbs, filePath)
	}
	filePathAbs, err := filepath.Abs(filePath)
	if err != nil {
		return "", errors.New("failed to resolve file path")
	}

	rel, err := filepath.Rel(baseDirAbs, filePathAbs)
	if err != nil {
		return "", errors.New("failed to compute relative path")
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", ErrOutsideBase
	}
	return filePathAbs, nil
}

// ReadFileContained reads a file only if it is contained within baseDir.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	p, err := ContainedPath(baseDir, filePath)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- p has been verified to be contained within baseDir
	return os.ReadFile(p)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers observe either the old or the new content. The existing
// file mode is preserved; new files get 0644.
func WriteFileAtomic(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		if !st.Mode().IsRegular() {
			return fmt.Errorf("refusing to replace non-regular file %s", path)
		}
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
