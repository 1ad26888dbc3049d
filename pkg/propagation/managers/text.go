package managers

import (
	"bytes"
	"strings"
)

// TextManager handles plain VERSION files whose whole content is the
// version string.
type TextManager struct{}

// NewTextManager creates a new plain-text version file manager
func NewTextManager() *TextManager {
	return &TextManager{}
}

// Name returns the name of this manager
func (m *TextManager) Name() string {
	return "text"
}

// Handles matches VERSION with no extension or a .txt extension.
func (m *TextManager) Handles(base string) bool {
	name := strings.ToUpper(base)
	return name == "VERSION" || name == "VERSION.TXT"
}

// ExtractVersion returns the single non-empty line of the file.
func (m *TextManager) ExtractVersion(data []byte) (string, error) {
	content := strings.TrimSpace(string(data))
	if content == "" || strings.ContainsAny(content, "\r\n") {
		return "", ErrNoVersion
	}
	return content, nil
}

// UpdateVersion replaces the content with version and one trailing newline.
func (m *TextManager) UpdateVersion(data []byte, version string) ([]byte, error) {
	if _, err := m.ExtractVersion(data); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(version)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
