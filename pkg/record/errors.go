package record

import (
	"fmt"
	"strings"
)

// ParseError reports a record that could not be decoded or that does not
// satisfy the record schema after migration. It is never repaired silently.
type ParseError struct {
	Path    string
	Details []string
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("malformed record")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Details) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Details, "; "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(err error, details ...string) *ParseError {
	return &ParseError{Err: err, Details: details}
}

// WithPath returns a copy of the error annotated with the file it came from.
func (e *ParseError) WithPath(path string) *ParseError {
	out := *e
	out.Path = path
	return &out
}

func errorf(format string, args ...interface{}) *ParseError {
	return newParseError(fmt.Errorf(format, args...))
}
