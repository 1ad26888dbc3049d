package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentRecord = `{
  "version": {
    "major": 1,
    "minor": 4,
    "patch": 2
  },
  "status": {
    "stage": "beta",
    "number": 3
  },
  "build": {
    "date": "2025-10-01T12:00:00Z",
    "number": 7,
    "total": 42
  },
  "commit": "a1b2c3d",
  "config": {
    "schemaVersion": "2.0.0",
    "ignore": [
      "dist"
    ],
    "markdown": [
      "README.md"
    ],
    "json": [
      "manifest.json"
    ]
  }
}
`

func TestParseCurrentShape(t *testing.T) {
	rec, err := Parse([]byte(currentRecord))
	require.NoError(t, err)

	assert.Equal(t, Version{Major: 1, Minor: 4, Patch: 2}, rec.Version)
	assert.Equal(t, Status{Stage: "beta", Number: 3}, rec.Status)
	assert.Equal(t, Build{Date: "2025-10-01T12:00:00Z", Number: 7, Total: 42}, rec.Build)
	require.NotNil(t, rec.Commit)
	assert.Equal(t, "a1b2c3d", *rec.Commit)
	assert.Equal(t, CurrentSchema, rec.Config.SchemaVersion)
	assert.Equal(t, []string{"dist"}, rec.Config.Ignore)
	assert.Equal(t, []string{"README.md"}, rec.Config.Markdown)
	assert.Equal(t, []string{"manifest.json"}, rec.Config.JSON)
}

func TestSerializeIsCanonical(t *testing.T) {
	rec, err := Parse([]byte(currentRecord))
	require.NoError(t, err)

	out, err := Serialize(rec)
	require.NoError(t, err)
	assert.Equal(t, currentRecord, string(out))
	assert.True(t, strings.HasSuffix(string(out), "}\n"))
	assert.False(t, strings.HasSuffix(string(out), "\n\n"))
}

func TestSerializeRoundTripStable(t *testing.T) {
	records := []*Record{
		Default(""),
		{
			Version: Version{Major: 3, Minor: 0, Patch: 11},
			Status:  Status{Stage: "RC", Number: 1},
			Build:   Build{Date: "Mon, 02 Jan 2006", Number: 0, Total: 99},
			Commit:  StringPtr("deadbee"),
			Config: Config{
				SchemaVersion: CurrentSchema,
				Ignore:        []string{"vendor/**", "*.tmp"},
				Markdown:      []string{"README.md", "docs/INDEX.md"},
				JSON:          []string{"manifest.json"},
			},
		},
	}

	for _, r := range records {
		first, err := Serialize(r)
		require.NoError(t, err)

		parsed, err := Parse(first)
		require.NoError(t, err)
		assert.Equal(t, r, parsed)

		second, err := Serialize(parsed)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}
}

func TestSerializeNilListsAsEmptyArrays(t *testing.T) {
	r := &Record{Status: Status{Stage: "stable"}, Config: Config{SchemaVersion: CurrentSchema}}

	out, err := Serialize(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"ignore": []`)
	assert.Contains(t, string(out), `"commit": null`)
	assert.Nil(t, r.Config.Ignore, "Serialize must not mutate its input")
}

func TestSerializeDoesNotEscapeHTML(t *testing.T) {
	r := Default("")
	r.Config.Ignore = []string{"<generated>"}

	out, err := Serialize(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"<generated>"`)
}

func TestSerializeNil(t *testing.T) {
	_, err := Serialize(nil)
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty", "", "empty document"},
		{"whitespace", "  \n", "empty document"},
		{"truncated", `{"version": {"major": 1`, "invalid JSON"},
		{"array", `[1, 2, 3]`, "must be an object"},
		{"trailing data", `{} {}`, "trailing data"},
		{"missing version", `{"status": {"stage": "stable"}, "build": {}}`, "does not match schema"},
		{"negative patch", `{"version": {"major": 1, "minor": 0, "patch": -1}, "status": {"stage": "stable"}, "build": {}}`, "does not match schema"},
		{"fractional build", `{"version": {"major": 1, "minor": 0, "patch": 0}, "status": {"stage": "stable"}, "build": {"number": 1.5}}`, "does not match schema"},
		{"non-string ignore", `{"version": {"major": 1, "minor": 0, "patch": 0}, "status": {"stage": "stable"}, "build": {}, "ignore": [1]}`, "does not match schema"},
		{"numeric commit", `{"version": {"major": 1, "minor": 0, "patch": 0}, "status": {"stage": "stable"}, "build": {}, "commit": 12}`, "does not match schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseErrorWithPath(t *testing.T) {
	_, err := Parse([]byte("nope"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))

	annotated := perr.WithPath("/tmp/appversion.json")
	assert.Contains(t, annotated.Error(), "/tmp/appversion.json")
	assert.Empty(t, perr.Path)
	assert.NotNil(t, errors.Unwrap(annotated))
}

func TestParseNullDateAndMissingCommit(t *testing.T) {
	rec, err := Parse([]byte(`{
  "version": {"major": 0, "minor": 0, "patch": 1},
  "status": {"stage": "alpha"},
  "build": {"date": null, "number": 0, "total": 0}
}`))
	require.NoError(t, err)
	assert.Equal(t, "", rec.Build.Date)
	assert.Nil(t, rec.Commit)
	assert.Equal(t, 0, rec.Status.Number)
}

func TestSchemaDocumentIsACopy(t *testing.T) {
	doc := SchemaDocument()
	require.NotEmpty(t, doc)
	doc[0] = 'X'
	assert.NotEqual(t, byte('X'), SchemaDocument()[0])
}
