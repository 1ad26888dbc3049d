package mutation

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/appversion/pkg/record"
)

// Operation is the parameter of an "update" request.
type Operation string

const (
	OpMajor  Operation = "major"
	OpMinor  Operation = "minor"
	OpPatch  Operation = "patch"
	OpBuild  Operation = "build"
	OpCommit Operation = "commit"
)

// Operations lists every accepted update parameter in display order.
var Operations = []Operation{OpMajor, OpMinor, OpPatch, OpBuild, OpCommit}

// Inputs carries the values an operation needs from outside the record.
type Inputs struct {
	Now        time.Time
	DateLayout string
	// Commit is the short hash of HEAD; HasRepository is false when no
	// repository was found.
	Commit        string
	HasRepository bool
}

// ParseOperation normalizes s into an Operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Operations {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of major, minor, patch, build, commit)", ErrInvalidField, s)
}

// Apply dispatches op to the matching mutation.
func Apply(r *record.Record, op Operation, in Inputs) (Result, error) {
	switch op {
	case OpMajor:
		return BumpVersion(r, Major)
	case OpMinor:
		return BumpVersion(r, Minor)
	case OpPatch:
		return BumpVersion(r, Patch)
	case OpBuild:
		now := in.Now
		if now.IsZero() {
			now = time.Now()
		}
		return BumpBuild(r, now, in.DateLayout)
	case OpCommit:
		return BumpCommit(r, in.Commit, in.HasRepository), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidField, string(op))
	}
}
