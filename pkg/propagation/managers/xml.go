package managers

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// XMLManager handles Maven pom.xml (root <version>) and MSBuild project
// files (PropertyGroup/Version).
type XMLManager struct{}

// NewXMLManager creates a new XML manifest manager
func NewXMLManager() *XMLManager {
	return &XMLManager{}
}

// Name returns the name of this manager
func (m *XMLManager) Name() string {
	return "xml"
}

// Handles reports whether base is an XML manifest.
func (m *XMLManager) Handles(base string) bool {
	return hasExtension(base, ".xml", ".pom", ".csproj", ".fsproj", ".vbproj", ".props")
}

// ExtractVersion returns the text of the version element.
func (m *XMLManager) ExtractVersion(data []byte) (string, error) {
	_, el, err := m.versionElement(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(el.Text()), nil
}

// UpdateVersion replaces the version element's text. Everything else,
// including whitespace between elements, is written back as read.
func (m *XMLManager) UpdateVersion(data []byte, version string) ([]byte, error) {
	doc, el, err := m.versionElement(data)
	if err != nil {
		return nil, err
	}
	el.SetText(version)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("encode XML: %w", err)
	}
	return out, nil
}

func (m *XMLManager) versionElement(data []byte) (*etree.Document, *etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, nil, fmt.Errorf("invalid XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("invalid XML: no root element")
	}

	// Maven: <project><version>; a <parent><version> is deliberately not matched.
	el := root.SelectElement("version")
	if el == nil {
		el = root.FindElement("./PropertyGroup/Version")
	}
	if el == nil || strings.TrimSpace(el.Text()) == "" {
		return nil, nil, ErrNoVersion
	}
	return doc, el, nil
}
