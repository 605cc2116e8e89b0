package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCell     = errors.New("empty cell")
	ErrEmptySheet    = errors.New("sheet has no rows")
	ErrMissingColumn = errors.New("missing column")
	ErrMissingSheet  = errors.New("missing sheet")
	ErrNoFilter      = errors.New("mode has no filter column")
	ErrNeedsFilter   = errors.New("mode requires a filter value")
	ErrNotNumeric    = errors.New("not a number")
	ErrUnknownFormat = errors.New("unknown dataset format")
)

// LoadError locates a failure while loading a dataset.  Row counts the
// header as row 1 and is zero when the failure is not tied to a row.
type LoadError struct {
	Source string
	Sheet  string
	Column string
	Row    int
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	if e.Sheet != "" {
		fmt.Fprintf(&b, ": sheet %q", e.Sheet)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
