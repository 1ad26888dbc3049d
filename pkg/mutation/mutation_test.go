package mutation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/appversion/pkg/record"
)

func sample() *record.Record {
	r := record.Default(record.CurrentSchema)
	r.Version = record.Version{Major: 1, Minor: 2, Patch: 3}
	r.Build = record.Build{Date: "2025-01-01T00:00:00Z", Number: 4, Total: 10}
	r.Commit = record.StringPtr("abc1234")
	return r
}

func TestBumpVersionCascade(t *testing.T) {
	tests := []struct {
		field Field
		want  record.Version
	}{
		{Major, record.Version{Major: 2, Minor: 0, Patch: 0}},
		{Minor, record.Version{Major: 1, Minor: 3, Patch: 0}},
		{Patch, record.Version{Major: 1, Minor: 2, Patch: 4}},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			in := sample()
			res, err := BumpVersion(in, tt.field)
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Record.Version)
			assert.Equal(t, 0, res.Record.Build.Number)
			assert.Equal(t, 10, res.Record.Build.Total, "total is never reset")
			assert.True(t, res.VersionChanged)
			assert.Equal(t, OutcomeUpdated, res.Outcome)
			assert.Contains(t, res.Message, tt.want.String())

			assert.Equal(t, sample(), in, "input must not be mutated")
		})
	}
}

func TestBumpVersionInvalidField(t *testing.T) {
	_, err := BumpVersion(sample(), Field("build"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidField))
	assert.Contains(t, err.Error(), `"build"`)
}

func bumpBuild(t *testing.T, r *record.Record, now time.Time, layout string) Result {
	t.Helper()
	res, err := BumpBuild(r, now, layout)
	require.NoError(t, err)
	return res
}

func TestBumpBuild(t *testing.T) {
	now := time.Date(2025, 10, 19, 8, 30, 0, 0, time.UTC)

	res := bumpBuild(t, sample(), now, "")
	assert.Equal(t, 5, res.Record.Build.Number)
	assert.Equal(t, 11, res.Record.Build.Total)
	assert.Equal(t, "2025-10-19T08:30:00Z", res.Record.Build.Date)
	assert.Equal(t, record.Version{Major: 1, Minor: 2, Patch: 3}, res.Record.Version)
	assert.False(t, res.VersionChanged)

	custom := bumpBuild(t, sample(), now, "2006.1.2")
	assert.Equal(t, "2025.10.19", custom.Record.Build.Date)
}

func TestBuildNumberResetsButTotalGrows(t *testing.T) {
	r := record.Default(record.CurrentSchema)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	r = bumpBuild(t, r, now, "").Record
	r = bumpBuild(t, r, now, "").Record
	res, err := BumpVersion(r, Minor)
	require.NoError(t, err)
	r = bumpBuild(t, res.Record, now, "").Record

	assert.Equal(t, 1, r.Build.Number)
	assert.Equal(t, 3, r.Build.Total)
}

func TestBumpVersionAtMaximum(t *testing.T) {
	for _, field := range []Field{Major, Minor, Patch} {
		t.Run(string(field), func(t *testing.T) {
			in := sample()
			switch field {
			case Major:
				in.Version.Major = math.MaxInt
			case Minor:
				in.Version.Minor = math.MaxInt
			case Patch:
				in.Version.Patch = math.MaxInt
			}

			_, err := BumpVersion(in, field)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidVersion)
			assert.Contains(t, err.Error(), string(field))
		})
	}

	// A lower component at its maximum is reset, not incremented.
	in := sample()
	in.Version.Patch = math.MaxInt
	res, err := BumpVersion(in, Minor)
	require.NoError(t, err)
	assert.Equal(t, record.Version{Major: 1, Minor: 3, Patch: 0}, res.Record.Version)
}

func TestBumpBuildAtMaximum(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	in := sample()
	in.Build.Total = math.MaxInt
	_, err := BumpBuild(in, now, "")
	assert.ErrorIs(t, err, ErrInvalidBuild)

	in = sample()
	in.Build.Number = math.MaxInt
	_, err = Apply(in, OpBuild, Inputs{Now: now})
	assert.ErrorIs(t, err, ErrInvalidBuild)
}

func TestBumpCommit(t *testing.T) {
	res := BumpCommit(sample(), "def5678\n", true)
	require.NotNil(t, res.Record.Commit)
	assert.Equal(t, "def5678", *res.Record.Commit)
	assert.Equal(t, OutcomeUpdated, res.Outcome)

	none := BumpCommit(sample(), "", false)
	assert.Nil(t, none.Record.Commit)
	assert.Equal(t, OutcomeNoRepository, none.Outcome)
	assert.Equal(t, "no-repository", none.Outcome.String())
	assert.Contains(t, none.Message, "No Git repository")
}

func TestSetVersion(t *testing.T) {
	res, err := SetVersion(sample(), 3, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, record.Version{Major: 3, Minor: 0, Patch: 1}, res.Record.Version)
	assert.Equal(t, 0, res.Record.Build.Number)
	assert.Equal(t, 10, res.Record.Build.Total)
	assert.Equal(t, "Version updated to 3.0.1", res.Message)

	_, err = SetVersion(sample(), 1, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestParseVersionTriple(t *testing.T) {
	tests := []struct {
		input   string
		want    [3]int
		wantErr bool
	}{
		{"1.2.3", [3]int{1, 2, 3}, false},
		{"v10.0.7", [3]int{10, 0, 7}, false},
		{" 0.0.0 ", [3]int{0, 0, 0}, false},
		{"1.2", [3]int{}, true},
		{"1.2.3.4", [3]int{}, true},
		{"a.b.c", [3]int{}, true},
		{"1.2.3-beta.1", [3]int{}, true},
		{"1.2.3+sha", [3]int{}, true},
		{"", [3]int{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			major, minor, patch, err := ParseVersionTriple(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, [3]int{major, minor, patch})
		})
	}
}

func TestSetVersionString(t *testing.T) {
	res, err := SetVersionString(sample(), "v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", res.Record.VersionString())

	_, err = SetVersionString(sample(), "two")
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		validate  bool
		want      record.Status
		wantErr   error
		wantInMsg string
	}{
		{"stage_with_number", "beta.2", true, record.Status{Stage: "beta", Number: 2}, nil, "beta.2"},
		{"stage_only", "stable", true, record.Status{Stage: "stable", Number: 0}, nil, "stable.0"},
		{"case_preserved", "RC.1", true, record.Status{Stage: "RC", Number: 1}, nil, "RC.1"},
		{"bogus_validated", "bogus", true, record.Status{}, ErrInvalidStage, ""},
		{"bogus_permissive", "bogus", false, record.Status{Stage: "bogus"}, nil, "bogus.0"},
		{"empty", "", true, record.Status{}, ErrInvalidStage, ""},
		{"bad_number", "beta.x", true, record.Status{}, ErrInvalidStatusNumber, ""},
		{"negative_number", "beta.-1", true, record.Status{}, ErrInvalidStatusNumber, ""},
		{"empty_number", "alpha.", true, record.Status{}, ErrInvalidStatusNumber, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sample()
			res, err := SetStatus(in, tt.input, tt.validate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, sample(), in)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Record.Status)
			assert.True(t, res.StatusChanged)
			assert.Contains(t, res.Message, tt.wantInMsg)
			assert.Equal(t, record.Version{Major: 1, Minor: 2, Patch: 3}, res.Record.Version)
		})
	}
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)
	in := Inputs{Now: now, Commit: "feedbee", HasRepository: true}

	res, err := Apply(sample(), OpMinor, in)
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", res.Record.VersionString())

	res, err = Apply(sample(), OpBuild, in)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Record.Build.Number)
	assert.Equal(t, "2025-10-19T00:00:00Z", res.Record.Build.Date)

	res, err = Apply(sample(), OpCommit, in)
	require.NoError(t, err)
	assert.Equal(t, "feedbee", *res.Record.Commit)

	res, err = Apply(sample(), OpCommit, Inputs{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoRepository, res.Outcome)

	_, err = Apply(sample(), Operation("release"), in)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation(" Major ")
	require.NoError(t, err)
	assert.Equal(t, OpMajor, op)

	_, err = ParseOperation("status")
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestIsAllowedStage(t *testing.T) {
	for _, s := range []string{"stable", "Stable", "RC", "rc", "Beta", "alpha"} {
		assert.True(t, IsAllowedStage(s), s)
	}
	for _, s := range []string{"", "gamma", "release"} {
		assert.False(t, IsAllowedStage(s), s)
	}
}
