package facts

import (
	"fmt"
	"io/fs"
	"strings"
)

// MalformedPointError is returned when a point string does not match
// <Kind>(bb<N>[<K>]).
type MalformedPointError struct {
	Raw    string
	Reason string
}

func (e *MalformedPointError) Error() string {
	return fmt.Sprintf("malformed point %q: %s", e.Raw, e.Reason)
}

// MalformedTupleError is returned when a kept line has the wrong number of
// fields for its relation.
type MalformedTupleError struct {
	Relation Relation
	Line     int
	Fields   int
}

func (e *MalformedTupleError) Error() string {
	return fmt.Sprintf("%s line %d: got %d fields, want %d", e.Relation, e.Line, e.Fields, e.Relation.Arity())
}

// MissingRelationError is returned when a required relation file is absent.
type MissingRelationError struct {
	Function string
	Relation Relation
	Path     string
}

func (e *MissingRelationError) Error() string {
	return fmt.Sprintf("function %s: missing relation %s (%s)", e.Function, e.Relation, e.Path)
}

// Unwrap lets errors.Is(err, fs.ErrNotExist) match.
func (e *MissingRelationError) Unwrap() error {
	return fs.ErrNotExist
}

// ValidationError reports a crate whose fact directory is incomplete.
type ValidationError struct {
	Crate   string
	Missing []string
}

func (e *ValidationError) Error() string {
	const shown = 3
	head := e.Missing
	if len(head) > shown {
		head = head[:shown]
	}
	msg := fmt.Sprintf("crate %s: %d missing fact files: %s", e.Crate, len(e.Missing), strings.Join(head, ", "))
	if len(e.Missing) > shown {
		msg += ", ..."
	}
	return msg
}
