package exitcode

import (
	"testing"
)

func TestExitCodeValuesAreStable(t *testing.T) {
	codes := map[string]int{
		"Success":         Success,
		"GeneralError":    GeneralError,
		"ConfigError":     ConfigError,
		"ValidationError": ValidationError,
		"FileSystemError": FileSystemError,
		"NetworkError":    NetworkError,
		"PermissionError": PermissionError,
		"NotInitialized":  NotInitialized,
		"DataError":       DataError,
		"AlreadyExists":   AlreadyExists,
	}
	for i, name := range []string{
		"Success", "GeneralError", "ConfigError", "ValidationError", "FileSystemError",
		"NetworkError", "PermissionError", "NotInitialized", "DataError", "AlreadyExists",
	} {
		if codes[name] != i {
			t.Errorf("%s = %d, expected %d", name, codes[name], i)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{ValidationError, "Validation error"},
		{NotInitialized, "Record not initialized"},
		{DataError, "Malformed record"},
		{AlreadyExists, "Record already exists"},
		{-1, "Unknown error"},
		{999, "Unknown error"},
	}

	for _, tt := range tests {
		if got := String(tt.code); got != tt.expected {
			t.Errorf("String(%d) = %q, expected %q", tt.code, got, tt.expected)
		}
	}
}
