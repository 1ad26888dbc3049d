// Package managers reads and rewrites the version field of manifest files.
// Each manager works on file contents only; reading and writing the file is
// left to the caller.
package managers

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoVersion is returned when a manifest parses but carries no version
// field this manager knows how to update.
var ErrNoVersion = errors.New("no version field found")

// hasExtension reports whether the base name ends with one of exts, ignoring case.
func hasExtension(base string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
