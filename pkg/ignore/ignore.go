// Package ignore decides which paths the propagation walk skips.
package ignore

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// SkipAllPattern in an ignore list disables propagation entirely.
const SkipAllPattern = "*"

// IgnoreFileName is the optional per-project override file, one pattern per line.
const IgnoreFileName = ".apvignore"

// DefaultPatterns are always ignored.
var DefaultPatterns = []string{"node_modules", "bower_components", ".git"}

// Options configures a Matcher.
type Options struct {
	// Root is the walk root; relative paths passed to Match are taken from it.
	Root string
	// Patterns are doublestar globs from the record's config.ignore.
	Patterns []string
	// Defaults replaces DefaultPatterns when non-nil.
	Defaults []string
	// RespectGitignore layers .gitignore files and .git/info/exclude on top
	// of the glob patterns.
	RespectGitignore bool
}

type globPattern struct {
	glob    string
	dirOnly bool
}

// Matcher provides glob and optional gitignore filtering
type Matcher struct {
	globs   []globPattern
	skipAll bool
	git     gitignore.Matcher
}

// NewMatcher creates a matcher with layered patterns:
// 1. built-in defaults (node_modules, bower_components, .git)
// 2. config.ignore globs from the record
// 3. .apvignore at the root
// 4. .gitignore and related git ignore files, when enabled
func NewMatcher(opts Options) (*Matcher, error) {
	m := &Matcher{}

	defaults := opts.Defaults
	if defaults == nil {
		defaults = DefaultPatterns
	}

	patterns := make([]string, 0, len(defaults)+len(opts.Patterns))
	patterns = append(patterns, defaults...)
	patterns = append(patterns, opts.Patterns...)

	if opts.Root != "" {
		if filePatterns, err := readIgnoreFile(filepath.Join(opts.Root, IgnoreFileName)); err == nil {
			patterns = append(patterns, filePatterns...)
		}
	}

	seen := make(map[string]bool, len(patterns))
	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true

		if p == SkipAllPattern {
			m.skipAll = true
			continue
		}

		gp := globPattern{glob: strings.TrimPrefix(filepath.ToSlash(p), "./")}
		if strings.HasSuffix(gp.glob, "/") {
			gp.dirOnly = true
			gp.glob = strings.TrimRight(gp.glob, "/")
		}
		if gp.glob == "" {
			continue
		}
		if !doublestar.ValidatePattern(gp.glob) {
			return nil, fmt.Errorf("invalid ignore pattern %q", raw)
		}
		m.globs = append(m.globs, gp)
	}

	if opts.RespectGitignore && opts.Root != "" {
		// ReadPatterns with nil reads .gitignore files and .git/info/exclude
		gitPatterns, err := gitignore.ReadPatterns(osfs.New(opts.Root), nil)
		if err == nil && len(gitPatterns) > 0 {
			m.git = gitignore.NewMatcher(gitPatterns)
		}
	}

	return m, nil
}

// SkipAll reports whether the pattern list contained "*".
func (m *Matcher) SkipAll() bool {
	return m.skipAll
}

// Match reports whether rel (relative to the root, any separator) should be
// skipped. A match on a directory prunes its whole subtree.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m.skipAll {
		return true
	}

	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	if rel == "" || rel == "." {
		return false
	}
	base := path.Base(rel)

	for _, gp := range m.globs {
		if gp.dirOnly && !isDir {
			continue
		}
		if ok, _ := doublestar.Match(gp.glob, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(gp.glob, base); ok {
			return true
		}
	}

	if m.git != nil {
		if parts := splitPath(rel); len(parts) > 0 && m.git.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// readIgnoreFile reads patterns from a text file (like .apvignore)
func readIgnoreFile(p string) ([]string, error) {
	cleaned := filepath.Clean(p)
	if filepath.Base(cleaned) != IgnoreFileName {
		return nil, fmt.Errorf("disallowed ignore file path: %s", cleaned)
	}
	content, err := os.ReadFile(cleaned) // #nosec G304 -- basename allowlisted
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	parts := strings.Split(p, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
