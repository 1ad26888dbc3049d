package buildinfo

import (
	"strings"
	"testing"
)

func TestBinaryVersionDefault(t *testing.T) {
	if BinaryVersion != "dev" {
		t.Errorf("Expected BinaryVersion to be 'dev', got '%s'", BinaryVersion)
	}
}

func TestVersionPrefersLdflags(t *testing.T) {
	original := BinaryVersion
	defer func() { BinaryVersion = original }()

	BinaryVersion = "1.6.0"
	if got := Version(); got != "1.6.0" {
		t.Errorf("Version() = %q, expected 1.6.0", got)
	}
}

func TestVersionFallback(t *testing.T) {
	original := BinaryVersion
	defer func() { BinaryVersion = original }()

	BinaryVersion = "dev"
	got := Version()
	if got == "" {
		t.Fatal("Version() should never be empty")
	}
	if mv := ModuleVersion(); mv == "" && got != "dev" {
		t.Errorf("Version() = %q, expected dev without build info", got)
	}
}

func TestModulePath(t *testing.T) {
	if !strings.HasPrefix(ModulePath, "github.com/") {
		t.Errorf("unexpected module path %q", ModulePath)
	}
}
