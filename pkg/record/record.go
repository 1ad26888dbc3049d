// Package record defines the appversion record: the single JSON document that
// carries a project's version, release status, build counters, commit and
// propagation settings. It also owns the canonical codec and the migration
// chain that upgrades older on-disk layouts.
package record

import (
	"fmt"
	"strconv"
)

// CurrentSchema is the schema tag written into config.schemaVersion by this
// release of the engine.
const CurrentSchema = "2.0.0"

// DefaultFilename is the conventional record filename in a project root.
const DefaultFilename = "appversion.json"

// Version is the semantic version triple.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// String renders the triple as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Status is the release stage (stable, rc, beta, alpha) plus an optional
// stage number.
type Status struct {
	Stage  string `json:"stage"`
	Number int    `json:"number"`
}

// String renders "stage" when Number is zero and "stage.number" otherwise.
func (s Status) String() string {
	if s.Number == 0 {
		return s.Stage
	}
	return s.Stage + "." + strconv.Itoa(s.Number)
}

// Build holds build counters. Number restarts on every version change, Total
// never goes down.
type Build struct {
	Date   string `json:"date"`
	Number int    `json:"number"`
	Total  int    `json:"total"`
}

// Config holds the record's own settings.
type Config struct {
	SchemaVersion string   `json:"schemaVersion"`
	Ignore        []string `json:"ignore"`
	Markdown      []string `json:"markdown"`
	JSON          []string `json:"json"`
}

// Record is the in-memory form of appversion.json. Field order here is the
// key order on disk.
type Record struct {
	Version Version `json:"version"`
	Status  Status  `json:"status"`
	Build   Build   `json:"build"`
	Commit  *string `json:"commit"`
	Config  Config  `json:"config"`
}

// Default returns the template record written by init.
func Default(schemaTag string) *Record {
	if schemaTag == "" {
		schemaTag = CurrentSchema
	}
	return &Record{
		Version: Version{Major: 0, Minor: 1, Patch: 0},
		Status:  Status{Stage: "stable", Number: 0},
		Build:   Build{Date: "", Number: 0, Total: 0},
		Commit:  nil,
		Config: Config{
			SchemaVersion: schemaTag,
			Ignore:        []string{},
			Markdown:      []string{},
			JSON:          []string{},
		},
	}
}

// VersionString is shorthand for r.Version.String().
func (r *Record) VersionString() string {
	return r.Version.String()
}

// CommitString returns the commit hash or "" when none is recorded.
func (r *Record) CommitString() string {
	if r.Commit == nil {
		return ""
	}
	return *r.Commit
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.Commit != nil {
		c := *r.Commit
		out.Commit = &c
	}
	out.Config.Ignore = cloneStrings(r.Config.Ignore)
	out.Config.Markdown = cloneStrings(r.Config.Markdown)
	out.Config.JSON = cloneStrings(r.Config.JSON)
	return &out
}

// normalize replaces nil lists with empty ones so that they serialize as []
// and compare equal after a round trip.
func (r *Record) normalize() {
	if r.Config.Ignore == nil {
		r.Config.Ignore = []string{}
	}
	if r.Config.Markdown == nil {
		r.Config.Markdown = []string{}
	}
	if r.Config.JSON == nil {
		r.Config.JSON = []string{}
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// StringPtr is a helper for building records with a commit hash.
func StringPtr(s string) *string {
	return &s
}
