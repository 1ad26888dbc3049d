package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Parse decodes, migrates and validates a record using the current schema tag.
func Parse(data []byte) (*Record, error) {
	return ParseAs(data, CurrentSchema)
}

// ParseAs decodes a record of any historical shape, migrates it to the shape
// identified by schemaTag, validates it and returns the typed record. Any
// failure is a *ParseError.
func ParseAs(data []byte, schemaTag string) (*Record, error) {
	raw, err := DecodeRaw(data)
	if err != nil {
		return nil, err
	}
	return FromRaw(raw, schemaTag)
}

// DecodeRaw decodes data into a generic JSON object without migrating it.
func DecodeRaw(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newParseError(errors.New("empty document"))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, newParseError(fmt.Errorf("invalid JSON: %w", err))
	}
	if dec.More() {
		return nil, errorf("invalid JSON: trailing data after top-level value")
	}

	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, errorf("top-level value must be an object, got %s", jsonKind(doc))
	}
	return raw, nil
}

// FromRaw migrates a generic object and converts it to a Record.
func FromRaw(raw map[string]any, schemaTag string) (*Record, error) {
	migrated := Migrate(raw, schemaTag)

	data, err := json.Marshal(migrated)
	if err != nil {
		return nil, newParseError(fmt.Errorf("re-encode migrated record: %w", err))
	}

	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, newParseError(fmt.Errorf("decode record: %w", err))
	}
	rec.normalize()
	return &rec, nil
}

// Serialize renders the canonical form: struct key order, two-space indent,
// no HTML escaping, exactly one trailing newline.
func Serialize(r *Record) ([]byte, error) {
	if r == nil {
		return nil, errors.New("cannot serialize nil record")
	}
	out := r.Clone()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
