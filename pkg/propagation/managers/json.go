package managers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONManager handles JSON manifests such as package.json, bower.json and
// manifest.json. Only a top-level "version" string is updated; every other
// member keeps its position and its nested content.
type JSONManager struct{}

// NewJSONManager creates a new JSON manifest manager
func NewJSONManager() *JSONManager {
	return &JSONManager{}
}

// Name returns the name of this manager
func (m *JSONManager) Name() string {
	return "json"
}

// Handles reports whether base is a JSON file.
func (m *JSONManager) Handles(base string) bool {
	return hasExtension(base, ".json")
}

// ExtractVersion returns the top-level "version" string.
func (m *JSONManager) ExtractVersion(data []byte) (string, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return "", err
	}
	i := obj.index("version")
	if i < 0 {
		return "", ErrNoVersion
	}
	var v string
	if err := json.Unmarshal(obj[i].value, &v); err != nil || v == "" {
		return "", ErrNoVersion
	}
	return v, nil
}

// UpdateVersion replaces the top-level "version" string and re-indents the
// document with two spaces.
func (m *JSONManager) UpdateVersion(data []byte, version string) ([]byte, error) {
	if _, err := m.ExtractVersion(data); err != nil {
		return nil, err
	}
	obj, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	encoded, err := marshalNoEscape(version)
	if err != nil {
		return nil, err
	}
	obj[obj.index("version")].value = encoded
	return obj.encode()
}

type member struct {
	key   string
	value json.RawMessage
}

// orderedObject is a JSON object whose members keep their source order.
type orderedObject []member

func (o orderedObject) index(key string) int {
	for i, mem := range o {
		if mem.key == key {
			return i
		}
	}
	return -1
}

func decodeObject(data []byte) (orderedObject, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("top-level value is not an object")
	}

	var obj orderedObject
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid JSON: expected object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		obj = append(obj, member{key: key, value: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid JSON: trailing data after top-level object")
	}
	return obj, nil
}

func (o orderedObject) encode() ([]byte, error) {
	if len(o) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, mem := range o {
		key, err := marshalNoEscape(mem.key)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, mem.value, "  ", "  "); err != nil {
			return nil, fmt.Errorf("indent member %q: %w", mem.key, err)
		}
		if i < len(o)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
