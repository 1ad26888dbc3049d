package managers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// YAMLManager handles YAML manifests (pubspec.yaml, Chart.yaml, ...). Only a
// top-level scalar "version" in the first document is touched. The node tree
// locates it and the new value is spliced into the original bytes.
type YAMLManager struct{}

// NewYAMLManager creates a new YAML manifest manager
func NewYAMLManager() *YAMLManager {
	return &YAMLManager{}
}

// Name returns the name of this manager
func (m *YAMLManager) Name() string {
	return "yaml"
}

// Handles reports whether base is a YAML file.
func (m *YAMLManager) Handles(base string) bool {
	return hasExtension(base, ".yaml", ".yml")
}

// ExtractVersion returns the top-level version scalar of the first document.
func (m *YAMLManager) ExtractVersion(data []byte) (string, error) {
	node, err := m.versionNode(data)
	if err != nil {
		return "", err
	}
	return node.Value, nil
}

// UpdateVersion rewrites the top-level version scalar in place. The rest of
// the file, later documents included, is kept byte for byte.
func (m *YAMLManager) UpdateVersion(data []byte, version string) ([]byte, error) {
	node, err := m.versionNode(data)
	if err != nil {
		return nil, err
	}
	start, end, err := scalarSpan(data, node)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(data)+len(version))
	out = append(out, data[:start]...)
	out = append(out, renderScalar(node.Style, version)...)
	out = append(out, data[end:]...)
	return out, nil
}

func (m *YAMLManager) versionNode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNoVersion
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrNoVersion
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Value != "version" {
			continue
		}
		if value.Kind != yaml.ScalarNode || value.Value == "" || value.Tag == "!!null" {
			return nil, ErrNoVersion
		}
		return value, nil
	}
	return nil, ErrNoVersion
}

// scalarSpan returns the byte range of node's source text, quotes included.
// Only single-line plain and quoted scalars can be located.
func scalarSpan(data []byte, node *yaml.Node) (int, int, error) {
	lineStart := 0
	for line := 1; line < node.Line; line++ {
		i := bytes.IndexByte(data[lineStart:], '\n')
		if i < 0 {
			return 0, 0, fmt.Errorf("version value not found at line %d", node.Line)
		}
		lineStart += i + 1
	}
	lineEnd := len(data)
	if i := bytes.IndexByte(data[lineStart:], '\n'); i >= 0 {
		lineEnd = lineStart + i
	}
	line := data[lineStart:lineEnd]

	// Columns count characters, not bytes.
	pos := 0
	for col := 1; col < node.Column && pos < len(line); col++ {
		_, size := utf8.DecodeRune(line[pos:])
		pos += size
	}
	rest := line[pos:]
	base := lineStart + pos

	// Step over tag and anchor properties in front of the value.
	for {
		trimmed := bytes.TrimLeft(rest, " \t")
		base += len(rest) - len(trimmed)
		rest = trimmed
		if len(rest) == 0 || (rest[0] != '!' && rest[0] != '&') {
			break
		}
		n := bytes.IndexAny(rest, " \t")
		if n < 0 {
			break
		}
		base += n
		rest = rest[n:]
	}

	switch node.Style &^ (yaml.TaggedStyle | yaml.FlowStyle) {
	case yaml.DoubleQuotedStyle:
		for i := 1; len(rest) > 0 && rest[0] == '"' && i < len(rest); i++ {
			switch rest[i] {
			case '\\':
				i++
			case '"':
				return base, base + i + 1, nil
			}
		}
	case yaml.SingleQuotedStyle:
		for i := 1; len(rest) > 0 && rest[0] == '\'' && i < len(rest); i++ {
			if rest[i] != '\'' {
				continue
			}
			if i+1 < len(rest) && rest[i+1] == '\'' {
				i++
				continue
			}
			return base, base + i + 1, nil
		}
	case 0:
		if !strings.Contains(node.Value, "\n") && bytes.HasPrefix(rest, []byte(node.Value)) {
			return base, base + len(node.Value), nil
		}
	}
	return 0, 0, fmt.Errorf("version value at line %d is not a single-line scalar", node.Line)
}

// renderScalar writes version in the quoting style of the value it replaces.
// A plain value that YAML would not read back as a string gets double quotes.
func renderScalar(style yaml.Style, version string) string {
	switch style &^ (yaml.TaggedStyle | yaml.FlowStyle) {
	case yaml.DoubleQuotedStyle:
		return strconv.Quote(version)
	case yaml.SingleQuotedStyle:
		return "'" + strings.ReplaceAll(version, "'", "''") + "'"
	}
	if plainString(version) {
		return version
	}
	return strconv.Quote(version)
}

func plainString(s string) bool {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil || len(doc.Content) != 1 {
		return false
	}
	n := doc.Content[0]
	return n.Kind == yaml.ScalarNode && n.Style == 0 && n.ShortTag() == "!!str" && n.Value == s
}
