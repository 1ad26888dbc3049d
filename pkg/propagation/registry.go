// Package propagation rewrites the version field of manifest files found
// under a project root so they follow the appversion record.
package propagation

import (
	"path/filepath"

	"github.com/fulmenhq/appversion/pkg/propagation/managers"
)

// Manager reads and rewrites the version field of one manifest format.
type Manager interface {
	// Name returns a short identifier such as "json" or "toml"
	Name() string

	// Handles reports whether the manager understands a file with this base name
	Handles(base string) bool

	// ExtractVersion returns the current version, or managers.ErrNoVersion
	ExtractVersion(data []byte) (string, error)

	// UpdateVersion returns data with the version field replaced
	UpdateVersion(data []byte, version string) ([]byte, error)
}

// Registry manages available manifest managers
type Registry struct {
	managers []Manager
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with every built-in manager.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(managers.NewJSONManager())
	r.Register(managers.NewTOMLManager())
	r.Register(managers.NewYAMLManager())
	r.Register(managers.NewXMLManager())
	r.Register(managers.NewTextManager())
	return r
}

// Register adds a manager. Managers registered earlier win when several
// handle the same file.
func (r *Registry) Register(manager Manager) {
	r.managers = append(r.managers, manager)
}

// ForFile returns the manager for path, chosen by base name.
func (r *Registry) ForFile(path string) (Manager, bool) {
	base := filepath.Base(path)
	for _, m := range r.managers {
		if m.Handles(base) {
			return m, true
		}
	}
	return nil, false
}

// List returns all registered managers in registration order
func (r *Registry) List() []Manager {
	out := make([]Manager, len(r.managers))
	copy(out, r.managers)
	return out
}
