package epdoc

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is matching. The typed errors below wrap
// these and carry the offending identifiers.
var (
	ErrDuplicateObject = errors.New("duplicate object")
	ErrObjectNotFound  = errors.New("object not found")

	// ErrVersionNotFound reports source text with no parseable Version
	// declaration. Parsing cannot proceed without one because the schema
	// is resolved from it.
	ErrVersionNotFound = errors.New("no Version object in source")
)

// DuplicateObjectError reports a non-empty name collision on insert,
// copy, or rename.
type DuplicateObjectError struct {
	Type string
	Name string
}

func (e *DuplicateObjectError) Error() string {
	return fmt.Sprintf("epdoc: duplicate object %s %q", e.Type, e.Name)
}

func (e *DuplicateObjectError) Unwrap() error { return ErrDuplicateObject }

// NotFoundError reports a lookup of a name with no occupant.
type NotFoundError struct {
	Type string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("epdoc: no object %s %q", e.Type, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrObjectNotFound }

// Issue codes reported by Document.Check.
const (
	CodeDanglingReference = "dangling_reference"
	CodeMissingRequired   = "missing_required"
)

// Issue is a single validation finding. Path is "Type/Name/field" with
// an empty middle segment for nameless objects.
type Issue struct {
	Path    string
	Code    string
	Message string
}

// Issues is a collection of validation findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
