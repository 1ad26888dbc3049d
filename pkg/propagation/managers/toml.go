package managers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// tomlVersionTables lists where a TOML manifest may carry its version, in
// lookup order. "" is the document root.
var tomlVersionTables = []string{"", "project", "package", "tool.poetry"}

var tomlVersionLine = regexp.MustCompile(`^(\s*version\s*=\s*)(["'])([^"']*)(["'])(.*)$`)

// TOMLManager handles pyproject.toml, Cargo.toml and similar manifests.
// NOTE: updates use targeted line replacement rather than a full
// unmarshal/remarshal so comments, ordering and formatting survive.
type TOMLManager struct{}

// NewTOMLManager creates a new TOML manifest manager
func NewTOMLManager() *TOMLManager {
	return &TOMLManager{}
}

// Name returns the name of this manager
func (m *TOMLManager) Name() string {
	return "toml"
}

// Handles reports whether base is a TOML file.
func (m *TOMLManager) Handles(base string) bool {
	return hasExtension(base, ".toml")
}

// ExtractVersion returns the first string version found in the root table,
// [project], [package] or [tool.poetry].
func (m *TOMLManager) ExtractVersion(data []byte) (string, error) {
	tables, err := m.versionTables(data)
	if err != nil {
		return "", err
	}
	return tables[0].version, nil
}

// UpdateVersion rewrites the version line of every table that carries a
// string version.
func (m *TOMLManager) UpdateVersion(data []byte, version string) ([]byte, error) {
	tables, err := m.versionTables(data)
	if err != nil {
		return nil, err
	}

	content := string(data)
	for _, t := range tables {
		updated, ok := updateTOMLField(content, t.name, version)
		if !ok {
			return nil, fmt.Errorf("version in [%s] is not a plain key/value line", t.name)
		}
		content = updated
	}
	return []byte(content), nil
}

type tomlVersion struct {
	name    string
	version string
}

func (m *TOMLManager) versionTables(data []byte) ([]tomlVersion, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}

	var found []tomlVersion
	for _, name := range tomlVersionTables {
		table := doc
		if name != "" {
			for _, part := range strings.Split(name, ".") {
				next, ok := table[part].(map[string]interface{})
				if !ok {
					table = nil
					break
				}
				table = next
			}
		}
		if table == nil {
			continue
		}
		// Inherited forms like `version.workspace = true` decode to a table.
		if v, ok := table["version"].(string); ok && v != "" {
			found = append(found, tomlVersion{name: name, version: v})
		}
	}

	if len(found) == 0 {
		return nil, ErrNoVersion
	}
	return found, nil
}

// updateTOMLField replaces the quoted value of the first `version = "..."`
// line directly inside table, keeping indentation, quote style and any
// trailing comment.
func updateTOMLField(content, table, newValue string) (string, bool) {
	lines := strings.Split(content, "\n")
	current := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") {
			if strings.HasPrefix(trimmed, "[[") {
				// array of tables never holds the manifest version
				current = "\x00"
				continue
			}
			if end := strings.Index(trimmed, "]"); end > 0 {
				current = strings.TrimSpace(trimmed[1:end])
				continue
			}
		}

		if current != table {
			continue
		}
		if match := tomlVersionLine.FindStringSubmatch(line); match != nil && match[2] == match[4] {
			lines[i] = match[1] + match[2] + newValue + match[4] + match[5]
			return strings.Join(lines, "\n"), true
		}
	}

	return content, false
}
