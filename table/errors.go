package table

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrEmptyTable    = errors.New("table has no rows")
	ErrMissingValue  = errors.New("missing value")
	ErrNonFinite     = errors.New("value is not finite")
	ErrOutOfRange    = errors.New("value out of range")
	ErrUnknownColumn = errors.New("unknown column")
)

// OutOfRangeError reports a query value outside the tabulated key range.
// It matches ErrOutOfRange under errors.Is.
type OutOfRangeError struct {
	Key   string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s = %s is outside the tabulated range [%s, %s]",
		e.Key, format(e.Value), format(e.Min), format(e.Max))
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// ColumnError reports a problem with one column.  Row is -1 when the problem
// is not tied to a row.
type ColumnError struct {
	Column string
	Row    int
	Err    error
}

func (e *ColumnError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("column %q: %s", e.Column, e.Err)
	}
	return fmt.Sprintf("column %q, row %d: %s", e.Column, e.Row, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
