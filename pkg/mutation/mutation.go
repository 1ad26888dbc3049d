// Package mutation implements the operations that change an appversion record:
// version bumps, build and commit updates, and explicit version/status sets.
//
// Every operation is a pure function. It clones the input, applies the
// change, and returns the new record with a confirmation message. Nothing here
// touches the filesystem; persisting the result is up to the caller.
package mutation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fulmenhq/appversion/pkg/record"
	"github.com/fulmenhq/appversion/pkg/versioning"
)

var (
	// ErrInvalidField is returned for a bump target other than major, minor or patch.
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidVersion is returned for version components that are not non-negative integers.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidStage is returned for a status stage outside the allowed set.
	ErrInvalidStage = errors.New("invalid status stage")
	// ErrInvalidStatusNumber is returned when the status number is not a non-negative integer.
	ErrInvalidStatusNumber = errors.New("invalid status number")
	// ErrInvalidBuild is returned when a build counter cannot be incremented.
	ErrInvalidBuild = errors.New("invalid build counter")
)

// Field names a component of the version triple.
type Field string

const (
	Major Field = "major"
	Minor Field = "minor"
	Patch Field = "patch"
)

// AllowedStages is the set of accepted status stages, compared case-insensitively.
var AllowedStages = []string{"stable", "rc", "beta", "alpha"}

// DefaultDateLayout is used for build.date when the caller does not set one.
const DefaultDateLayout = time.RFC3339

// Outcome classifies a successful operation.
type Outcome int

const (
	// OutcomeUpdated means the record changed as requested.
	OutcomeUpdated Outcome = iota
	// OutcomeNoRepository means no source-control history was available and
	// the commit was recorded as null.
	OutcomeNoRepository
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeNoRepository:
		return "no-repository"
	default:
		return "unknown"
	}
}

// Result is what every operation returns on success.
type Result struct {
	Record  *record.Record
	Message string
	Outcome Outcome
	// VersionChanged is set when version.* changed, so callers know to
	// propagate and refresh version badges.
	VersionChanged bool
	// StatusChanged is set when status.* changed.
	StatusChanged bool
}

// BumpVersion increments field and resets every lower-order component and
// build.number. build.total is untouched.
func BumpVersion(r *record.Record, field Field) (Result, error) {
	next := r.Clone()
	switch field {
	case Major:
		if next.Version.Major == math.MaxInt {
			return Result{}, fmt.Errorf("%w: major is already at its maximum", ErrInvalidVersion)
		}
		next.Version.Major++
		next.Version.Minor = 0
		next.Version.Patch = 0
	case Minor:
		if next.Version.Minor == math.MaxInt {
			return Result{}, fmt.Errorf("%w: minor is already at its maximum", ErrInvalidVersion)
		}
		next.Version.Minor++
		next.Version.Patch = 0
	case Patch:
		if next.Version.Patch == math.MaxInt {
			return Result{}, fmt.Errorf("%w: patch is already at its maximum", ErrInvalidVersion)
		}
		next.Version.Patch++
	default:
		return Result{}, fmt.Errorf("%w: %q (expected major, minor or patch)", ErrInvalidField, string(field))
	}
	next.Build.Number = 0

	return Result{
		Record:         next,
		Message:        fmt.Sprintf("Version updated to %s", next.VersionString()),
		VersionChanged: true,
	}, nil
}

// BumpBuild increments build.number and build.total and stamps build.date
// with now formatted by layout (DefaultDateLayout when empty).
func BumpBuild(r *record.Record, now time.Time, layout string) (Result, error) {
	if layout == "" {
		layout = DefaultDateLayout
	}
	if r.Build.Number == math.MaxInt || r.Build.Total == math.MaxInt {
		return Result{}, fmt.Errorf("%w: build counters are already at their maximum", ErrInvalidBuild)
	}
	next := r.Clone()
	next.Build.Number++
	next.Build.Total++
	next.Build.Date = now.Format(layout)

	return Result{
		Record:  next,
		Message: fmt.Sprintf("Build updated to %d/%d", next.Build.Number, next.Build.Total),
	}, nil
}

// BumpCommit records hash as the current commit. When found is false the
// commit is set to null and the outcome is OutcomeNoRepository; this is not
// an error.
func BumpCommit(r *record.Record, hash string, found bool) Result {
	next := r.Clone()
	hash = strings.TrimSpace(hash)
	if !found || hash == "" {
		next.Commit = nil
		return Result{
			Record:  next,
			Message: "No Git repository found, commit cleared",
			Outcome: OutcomeNoRepository,
		}
	}
	next.Commit = record.StringPtr(hash)
	return Result{
		Record:  next,
		Message: fmt.Sprintf("Commit updated to %s", hash),
	}
}

// SetVersion replaces the version triple and resets build.number.
func SetVersion(r *record.Record, major, minor, patch int) (Result, error) {
	if major < 0 || minor < 0 || patch < 0 {
		return Result{}, fmt.Errorf("%w: %d.%d.%d (components must be non-negative)", ErrInvalidVersion, major, minor, patch)
	}
	next := r.Clone()
	next.Version = record.Version{Major: major, Minor: minor, Patch: patch}
	next.Build.Number = 0

	return Result{
		Record:         next,
		Message:        fmt.Sprintf("Version updated to %s", next.VersionString()),
		VersionChanged: true,
	}, nil
}

// ParseVersionTriple parses "x.y.z" (optionally "v"-prefixed). Prerelease and
// build suffixes are rejected because the record has no place for them.
func ParseVersionTriple(s string) (major, minor, patch int, err error) {
	v, perr := versioning.ParseLenient(s)
	if perr != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q is not formatted as x.y.z: %v", ErrInvalidVersion, s, perr)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return 0, 0, 0, fmt.Errorf("%w: %q has prerelease or build metadata; use set-status for release stages", ErrInvalidVersion, s)
	}
	return v.Major(), v.Minor(), v.Patch(), nil
}

// SetVersionString parses s with ParseVersionTriple and applies SetVersion.
func SetVersionString(r *record.Record, s string) (Result, error) {
	major, minor, patch, err := ParseVersionTriple(s)
	if err != nil {
		return Result{}, err
	}
	return SetVersion(r, major, minor, patch)
}

// SetStatus parses "stage" or "stage.number" and replaces the status. With
// validate set the stage must be one of AllowedStages (any case; the input's
// case is kept). A missing number means 0.
func SetStatus(r *record.Record, text string, validate bool) (Result, error) {
	text = strings.TrimSpace(text)
	stage, numText, hasNumber := strings.Cut(text, ".")

	if stage == "" {
		return Result{}, fmt.Errorf("%w: empty stage", ErrInvalidStage)
	}
	if validate && !IsAllowedStage(stage) {
		return Result{}, fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidStage, stage, strings.Join(AllowedStages, ", "))
	}

	number := 0
	if hasNumber {
		n, err := strconv.Atoi(numText)
		if err != nil || n < 0 {
			return Result{}, fmt.Errorf("%w: %q", ErrInvalidStatusNumber, numText)
		}
		number = n
	}

	next := r.Clone()
	next.Status = record.Status{Stage: stage, Number: number}

	return Result{
		Record:        next,
		Message:       fmt.Sprintf("Status updated to %s.%d", stage, number),
		StatusChanged: true,
	}, nil
}

// IsAllowedStage reports whether stage is in AllowedStages, ignoring case.
func IsAllowedStage(stage string) bool {
	for _, s := range AllowedStages {
		if strings.EqualFold(s, stage) {
			return true
		}
	}
	return false
}
