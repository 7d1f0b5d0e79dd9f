package dataset

import "fmt"

// MissingFileError is returned when an input table cannot be opened.
type MissingFileError struct {
	Table Table
	Path  string
	Err   error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s table: cannot open %s: %v", e.Table, e.Path, e.Err)
}

func (e *MissingFileError) Unwrap() error {
	return e.Err
}

// MissingColumnError is returned when a required column is absent from a table header.
type MissingColumnError struct {
	Table  Table
	Path   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s table %s: missing required column %q", e.Table, e.Path, e.Column)
}

// ParseError is returned when a numeric cell holds text that is not a number.
// Line is the 1-based line in the source file, or 0 when unknown.
type ParseError struct {
	Table  Table
	Path   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s table %s:%d: column %q: invalid number %q", e.Table, e.Path, e.Line, e.Column, e.Value)
	}
	return fmt.Sprintf("%s table %s: column %q: invalid number %q", e.Table, e.Path, e.Column, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
