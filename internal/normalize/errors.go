package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// MissingColumnError is returned when one or more semantic fields match no
// header. It is fatal for a run.
type MissingColumnError struct {
	Fields    []Field
	Available []string
}

func (e *MissingColumnError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	quoted := make([]string, len(e.Available))
	for i, h := range e.Available {
		quoted[i] = fmt.Sprintf("%q", h)
	}
	return fmt.Sprintf("missing required column(s) for %s; available headers: [%s]",
		strings.Join(names, ", "), strings.Join(quoted, ", "))
}

// Missing reports whether f is one of the unresolved fields.
func (e *MissingColumnError) Missing(f Field) bool {
	for _, m := range e.Fields {
		if m == f {
			return true
		}
	}
	return false
}

// Row-level parse failures. These never abort the pipeline.
var (
	ErrBadDate   = errors.New("unparseable date")
	ErrBadNumber = errors.New("not a non-negative number")
	ErrZeroDozen = errors.New("zero dozens")
)

// RowParseError describes a dropped input row.
type RowParseError struct {
	Row   int // zero-based index into the table's data rows
	Field Field
	Value string
	Err   error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }
