// Package store loads and persists the appversion record file.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fulmenhq/appversion/pkg/logger"
	"github.com/fulmenhq/appversion/pkg/record"
	"github.com/fulmenhq/appversion/pkg/safeio"
)

var (
	// ErrNotFound means the record file does not exist.
	ErrNotFound = errors.New("appversion record not found; run 'apv init' first")
	// ErrAlreadyExists is returned by Init when a record file is present.
	ErrAlreadyExists = errors.New("appversion record already exists")
)

// Config locates the record and names the schema tag migrations target.
type Config struct {
	Root       string
	RecordFile string
	SchemaTag  string
}

// Engine reads and writes one record file.
type Engine struct {
	cfg  Config
	path string
}

// New returns an Engine for cfg. Empty fields take their defaults: the
// working directory, record.DefaultFilename and record.CurrentSchema.
func New(cfg Config) (*Engine, error) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.RecordFile == "" {
		cfg.RecordFile = record.DefaultFilename
	}
	if cfg.SchemaTag == "" {
		cfg.SchemaTag = record.CurrentSchema
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", cfg.Root, err)
	}
	cfg.Root = root

	path, err := safeio.ContainedPath(root, cfg.RecordFile)
	if err != nil {
		return nil, fmt.Errorf("record file %s: %w", cfg.RecordFile, err)
	}
	return &Engine{cfg: cfg, path: path}, nil
}

// Path returns the absolute path of the record file.
func (e *Engine) Path() string { return e.path }

// Root returns the absolute project root.
func (e *Engine) Root() string { return e.cfg.Root }

// SchemaTag returns the tag records are migrated to.
func (e *Engine) SchemaTag() string { return e.cfg.SchemaTag }

// Exists reports whether the record file is present.
func (e *Engine) Exists() bool {
	_, err := os.Stat(e.path)
	return err == nil
}

// Load reads, migrates and validates the record. A missing file yields
// ErrNotFound; malformed content yields a *record.ParseError carrying the
// path.
func (e *Engine) Load(ctx context.Context) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := safeio.ReadFileContained(e.cfg.Root, e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", e.path, err)
	}

	raw, err := record.DecodeRaw(data)
	if err != nil {
		return nil, annotate(err, e.path)
	}
	upgrade := record.NeedsMigration(raw, e.cfg.SchemaTag)

	rec, err := record.FromRaw(raw, e.cfg.SchemaTag)
	if err != nil {
		return nil, annotate(err, e.path)
	}
	if upgrade {
		logger.Info("record upgraded to current layout",
			logger.String("path", e.path),
			logger.String("schema", e.cfg.SchemaTag))
	}
	return rec, nil
}

// Save writes the full record atomically.
func (e *Engine) Save(ctx context.Context, r *record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := record.Serialize(r)
	if err != nil {
		return err
	}
	if err := safeio.WriteFileAtomic(e.path, data); err != nil {
		return fmt.Errorf("write %s: %w", e.path, err)
	}
	logger.Debug("record saved", logger.String("path", e.path), logger.String("version", r.VersionString()))
	return nil
}

// Init creates the record file from r, failing with ErrAlreadyExists when
// one is present. A nil r writes record.Default.
func (e *Engine) Init(ctx context.Context, r *record.Record) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil {
		r = record.Default(e.cfg.SchemaTag)
	}
	data, err := record.Serialize(r)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", e.path, err)
	}
	// #nosec G304 -- e.path is contained within the project root
	f, err := os.OpenFile(e.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, e.path)
		}
		return nil, fmt.Errorf("create %s: %w", e.path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(e.path)
		return nil, fmt.Errorf("write %s: %w", e.path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(e.path)
		return nil, fmt.Errorf("close %s: %w", e.path, err)
	}

	logger.Info("record created", logger.String("path", e.path))
	return r.Clone(), nil
}

func annotate(err error, path string) error {
	var perr *record.ParseError
	if errors.As(err, &perr) {
		return perr.WithPath(path)
	}
	return err
}
