package managers

import (
	"errors"
	"testing"
)

func TestJSONManager_Handles(t *testing.T) {
	m := NewJSONManager()
	if m.Name() != "json" {
		t.Errorf("Expected name 'json', got '%s'", m.Name())
	}
	for base, want := range map[string]bool{
		"package.json":  true,
		"manifest.JSON": true,
		"Cargo.toml":    false,
		"json":          false,
	} {
		if got := m.Handles(base); got != want {
			t.Errorf("Handles(%q) = %v, want %v", base, got, want)
		}
	}
}

func TestJSONManager_ExtractVersion(t *testing.T) {
	m := NewJSONManager()

	v, err := m.ExtractVersion([]byte(`{"name": "demo", "version": "1.2.3"}`))
	if err != nil {
		t.Fatalf("ExtractVersion failed: %v", err)
	}
	if v != "1.2.3" {
		t.Errorf("Expected version '1.2.3', got '%s'", v)
	}

	for name, input := range map[string]string{
		"missing":   `{"name": "demo"}`,
		"nested":    `{"meta": {"version": "1.0.0"}}`,
		"numeric":   `{"version": 1}`,
		"empty":     `{"version": ""}`,
		"empty_obj": `{}`,
	} {
		if _, err := m.ExtractVersion([]byte(input)); !errors.Is(err, ErrNoVersion) {
			t.Errorf("%s: expected ErrNoVersion, got %v", name, err)
		}
	}

	for name, input := range map[string]string{
		"array":     `[1]`,
		"truncated": `{"version": "1.0.0"`,
		"trailing":  `{"version": "1.0.0"} {}`,
		"blank":     ``,
	} {
		_, err := m.ExtractVersion([]byte(input))
		if err == nil || errors.Is(err, ErrNoVersion) {
			t.Errorf("%s: expected parse error, got %v", name, err)
		}
	}
}

func TestJSONManager_UpdateVersionPreservesOrder(t *testing.T) {
	input := `{
    "name": "demo",
    "version": "0.1.0",
    "scripts": {"test": "tap", "build": "make"},
    "description": "a <b> & c",
    "keywords": ["x", "y"],
    "private": true
}`
	want := `{
  "name": "demo",
  "version": "2.0.0",
  "scripts": {
    "test": "tap",
    "build": "make"
  },
  "description": "a <b> & c",
  "keywords": [
    "x",
    "y"
  ],
  "private": true
}
`

	m := NewJSONManager()
	got, err := m.UpdateVersion([]byte(input), "2.0.0")
	if err != nil {
		t.Fatalf("UpdateVersion failed: %v", err)
	}
	if string(got) != want {
		t.Errorf("UpdateVersion output mismatch\n got: %s\nwant: %s", got, want)
	}

	again, err := m.UpdateVersion(got, "2.0.0")
	if err != nil {
		t.Fatalf("second UpdateVersion failed: %v", err)
	}
	if string(again) != want {
		t.Errorf("UpdateVersion is not stable on its own output")
	}
}

func TestJSONManager_UpdateVersionWithoutField(t *testing.T) {
	m := NewJSONManager()
	if _, err := m.UpdateVersion([]byte(`{"name": "demo"}`), "1.0.0"); !errors.Is(err, ErrNoVersion) {
		t.Errorf("expected ErrNoVersion, got %v", err)
	}
}
