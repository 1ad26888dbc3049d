// Package versioning parses and orders semantic version strings. It backs
// set-version input parsing and the self-update check.
package versioning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Comparison int

const (
	ComparisonUnknown Comparison = iota
	ComparisonLess
	ComparisonEqual
	ComparisonGreater
)

func (c Comparison) String() string {
	switch c {
	case ComparisonLess:
		return "less"
	case ComparisonEqual:
		return "equal"
	case ComparisonGreater:
		return "greater"
	default:
		return "unknown"
	}
}

var semverPattern = regexp.MustCompile(`^(?:[vV])?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)

type identifier struct {
	raw     string
	numeric bool
	num     int
}

// Version represents a parsed semantic version
type Version struct {
	major      int
	minor      int
	patch      int
	pre        []identifier
	build      string
	raw        string
	hasVPrefix bool
}

// ParseLenient parses a version string, accepting an optional "v" or "V"
// prefix and surrounding whitespace.
func ParseLenient(input string) (*Version, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, errors.New("empty version")
	}

	matches := semverPattern.FindStringSubmatch(trimmed)
	if len(matches) == 0 {
		return nil, fmt.Errorf("invalid format")
	}

	segments := [3]int{}
	for i, name := range []string{"major", "minor", "patch"} {
		text := matches[i+1]
		if len(text) > 1 && strings.HasPrefix(text, "0") {
			return nil, fmt.Errorf("invalid %s segment: leading zeros not allowed", name)
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("segment '%s': %w", text, err)
		}
		segments[i] = n
	}

	version := &Version{
		major:      segments[0],
		minor:      segments[1],
		patch:      segments[2],
		raw:        trimmed,
		hasVPrefix: strings.HasPrefix(trimmed, "v") || strings.HasPrefix(trimmed, "V"),
	}

	if prerelease := matches[4]; prerelease != "" {
		parts := strings.Split(prerelease, ".")
		version.pre = make([]identifier, len(parts))
		for i, part := range parts {
			if part == "" {
				return nil, fmt.Errorf("invalid prerelease identifier: empty segment")
			}
			if isNumeric(part) {
				if len(part) > 1 && strings.HasPrefix(part, "0") {
					return nil, fmt.Errorf("invalid prerelease identifier: leading zeros not allowed")
				}
				num, err := strconv.Atoi(part)
				if err != nil {
					return nil, fmt.Errorf("invalid prerelease identifier '%s': %w", part, err)
				}
				version.pre[i] = identifier{raw: part, numeric: true, num: num}
			} else {
				version.pre[i] = identifier{raw: part}
			}
		}
	}

	if build := matches[5]; build != "" {
		for _, part := range strings.Split(build, ".") {
			if part == "" {
				return nil, fmt.Errorf("invalid build identifier: empty segment")
			}
		}
		version.build = build
	}

	return version, nil
}

func (v *Version) Major() int { return v.major }
func (v *Version) Minor() int { return v.minor }
func (v *Version) Patch() int { return v.patch }

// Prerelease returns the dot-joined prerelease identifiers, or "".
func (v *Version) Prerelease() string {
	if v == nil || len(v.pre) == 0 {
		return ""
	}
	parts := make([]string, len(v.pre))
	for i, id := range v.pre {
		parts[i] = id.raw
	}
	return strings.Join(parts, ".")
}

// Metadata returns the build metadata after "+", or "".
func (v *Version) Metadata() string {
	if v == nil {
		return ""
	}
	return v.build
}

// String returns the input as it was parsed, trimmed.
func (v *Version) String() string {
	if v == nil {
		return ""
	}
	return v.raw
}

// Core returns "M.m.p" without prefix, prerelease or metadata.
func (v *Version) Core() string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// Compare orders a and b by semantic version precedence. Build metadata is
// ignored.
func Compare(a, b string) (Comparison, error) {
	av, err := ParseLenient(a)
	if err != nil {
		return ComparisonUnknown, fmt.Errorf("invalid semver '%s': %w", a, err)
	}
	bv, err := ParseLenient(b)
	if err != nil {
		return ComparisonUnknown, fmt.Errorf("invalid semver '%s': %w", b, err)
	}
	return compareVersions(av, bv), nil
}

// IsNewer reports whether candidate is strictly greater than current. Any
// parse failure yields false.
func IsNewer(candidate, current string) bool {
	cmp, err := Compare(candidate, current)
	return err == nil && cmp == ComparisonGreater
}

func compareInts(a, b int) Comparison {
	switch {
	case a < b:
		return ComparisonLess
	case a > b:
		return ComparisonGreater
	default:
		return ComparisonEqual
	}
}

func compareVersions(a, b *Version) Comparison {
	for _, pair := range [][2]int{{a.major, b.major}, {a.minor, b.minor}, {a.patch, b.patch}} {
		if c := compareInts(pair[0], pair[1]); c != ComparisonEqual {
			return c
		}
	}

	if len(a.pre) == 0 && len(b.pre) == 0 {
		return ComparisonEqual
	}
	// A release outranks any of its prereleases.
	if len(a.pre) == 0 {
		return ComparisonGreater
	}
	if len(b.pre) == 0 {
		return ComparisonLess
	}

	limit := min(len(a.pre), len(b.pre))
	for i := 0; i < limit; i++ {
		ai, bi := a.pre[i], b.pre[i]
		switch {
		case ai.numeric && bi.numeric:
			if c := compareInts(ai.num, bi.num); c != ComparisonEqual {
				return c
			}
		case ai.numeric:
			return ComparisonLess
		case bi.numeric:
			return ComparisonGreater
		default:
			if c := compareInts(strings.Compare(ai.raw, bi.raw), 0); c != ComparisonEqual {
				return c
			}
		}
	}

	return compareInts(len(a.pre), len(b.pre))
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
