package propagation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fulmenhq/appversion/pkg/ignore"
	"github.com/fulmenhq/appversion/pkg/logger"
	"github.com/fulmenhq/appversion/pkg/propagation/managers"
	"github.com/fulmenhq/appversion/pkg/safeio"
)

// ConventionalTarget is always propagated to, whatever the record lists.
const ConventionalTarget = "package.json"

// DefaultWorkers bounds concurrent rewrites when Options.Workers is unset.
const DefaultWorkers = 4

// Options configures one propagation run.
type Options struct {
	Root    string
	Version string
	// Ignore holds config.ignore globs; "*" disables the run.
	Ignore []string
	// DefaultIgnore replaces ignore.DefaultPatterns when non-nil.
	DefaultIgnore []string
	// Targets are manifest base names from config.json.
	Targets          []string
	DryRun           bool
	Workers          int
	RespectGitignore bool
}

// Result contains the outcome of a propagation run
type Result struct {
	// Skipped is set when the ignore list disabled propagation.
	Skipped   bool
	Scanned   int
	Changes   []FileChange
	Unchanged []string
	Errors    []FileError
	Duration  time.Duration
}

// FileChange represents a change made (or, in dry-run, planned) to a file
type FileChange struct {
	File       string
	Manager    string
	OldVersion string
	NewVersion string
}

// FileError represents a per-file failure. It never aborts the run.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Propagator handles version propagation operations
type Propagator struct {
	registry *Registry
}

// NewPropagator creates a propagator. A nil registry uses DefaultRegistry.
func NewPropagator(registry *Registry) *Propagator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Propagator{registry: registry}
}

// TargetNames appends the conventional target to names and removes
// duplicates, keeping first occurrences.
func TargetNames(names []string) []string {
	out := make([]string, 0, len(names)+1)
	seen := make(map[string]bool, len(names)+1)
	for _, n := range append(append([]string(nil), names...), ConventionalTarget) {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Propagate walks opts.Root and rewrites the version of every target
// manifest that is not ignored. Per-file failures are collected in
// Result.Errors; the returned error is reserved for an unreadable root and
// context cancellation.
func (p *Propagator) Propagate(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(opts.Version) == "" {
		return nil, errors.New("propagation requires a version")
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	matcher, err := ignore.NewMatcher(ignore.Options{
		Root:             root,
		Patterns:         opts.Ignore,
		Defaults:         opts.DefaultIgnore,
		RespectGitignore: opts.RespectGitignore,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if matcher.SkipAll() {
		logger.Debug("Propagation disabled by ignore list")
		result.Skipped = true
		result.Duration = time.Since(start)
		return result, nil
	}

	targets := make(map[string]bool)
	for _, t := range TargetNames(opts.Targets) {
		targets[t] = true
	}

	candidates, err := p.collect(ctx, root, matcher, targets)
	if err != nil {
		return nil, err
	}
	result.Scanned = len(candidates)
	logger.Debug("Propagation candidates collected", logger.Int("count", len(candidates)), logger.String("version", opts.Version))

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, file := range candidates {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			change, unchanged, ferr := p.processFile(root, file, opts.Version, opts.DryRun)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case ferr != nil:
				result.Errors = append(result.Errors, FileError{File: file, Err: ferr})
				logger.Warn("Failed to update manifest", logger.String("file", file), logger.Err(ferr))
			case unchanged:
				result.Unchanged = append(result.Unchanged, file)
			case change != nil:
				result.Changes = append(result.Changes, *change)
			}
			return nil
		})
	}

	waitErr := g.Wait()

	sort.Slice(result.Changes, func(i, j int) bool { return result.Changes[i].File < result.Changes[j].File })
	sort.Strings(result.Unchanged)
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].File < result.Errors[j].File })
	result.Duration = time.Since(start)

	if waitErr != nil {
		return result, waitErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// collect walks root without following symlinks and returns the relative
// paths of target files that survive the ignore matcher.
func (p *Propagator) collect(ctx context.Context, root string, matcher *ignore.Matcher, targets map[string]bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == root {
				return err
			}
			logger.Debug("Skipping unreadable path", logger.String("path", path), logger.Err(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}
		if !targets[d.Name()] || matcher.Match(rel, false) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// processFile returns the change made, or unchanged=true when the file
// already carries version. Files that cannot be parsed or have no version
// field are skipped without error.
func (p *Propagator) processFile(root, rel, version string, dryRun bool) (*FileChange, bool, error) {
	manager, ok := p.registry.ForFile(rel)
	if !ok {
		logger.Debug("No manager for target", logger.String("file", rel))
		return nil, false, nil
	}

	data, err := safeio.ReadFileContained(root, filepath.FromSlash(rel))
	if err != nil {
		return nil, false, fmt.Errorf("read: %w", err)
	}

	oldVersion, err := manager.ExtractVersion(data)
	if err != nil {
		if errors.Is(err, managers.ErrNoVersion) {
			logger.Debug("Manifest has no version field", logger.String("file", rel))
		} else {
			logger.Debug("Skipping unparseable manifest", logger.String("file", rel), logger.Err(err))
		}
		return nil, false, nil
	}

	if oldVersion == version {
		logger.Debug("File already at correct version", logger.String("file", rel))
		return nil, true, nil
	}

	change := &FileChange{File: rel, Manager: manager.Name(), OldVersion: oldVersion, NewVersion: version}
	if dryRun {
		logger.Info("Would update manifest version", logger.String("file", rel), logger.String("from", oldVersion), logger.String("to", version))
		return change, false, nil
	}

	updated, err := manager.UpdateVersion(data, version)
	if err != nil {
		return nil, false, fmt.Errorf("update: %w", err)
	}
	if err := safeio.WriteFileAtomic(filepath.Join(root, filepath.FromSlash(rel)), updated); err != nil {
		return nil, false, err
	}

	logger.Info("Updated manifest version", logger.String("file", rel), logger.String("version", version))
	return change, false, nil
}
