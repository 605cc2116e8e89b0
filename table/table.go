// Package table implements lookup and linear interpolation over tabulated
// reference data.  A Table is an immutable set of rows, each row mapping
// a column name to a number.  Lookups run against an Index, which orders
// the rows of a table by one key column.
//
// Nothing in this package performs I/O or holds mutable state, so Tables
// and Indexes may be shared freely across goroutines.
package table

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

type Row map[string]float64

type Table struct {
	columns []string
	rows    []Row
}

// New returns a table with the given columns and rows.  Each row must carry
// a finite value for every column.  Columns in a row beyond those listed are
// dropped.  The table holds copies of its arguments.
func New(columns []string, rows []Row) (*Table, error) {
	if err := checkColumns(columns); err != nil {
		return nil, err
	}
	t := &Table{
		columns: slices.Clone(columns),
		rows:    make([]Row, 0, len(rows)),
	}
	for i, r := range rows {
		row := make(Row, len(columns))
		for _, c := range columns {
			v, ok := r[c]
			if !ok {
				return nil, &ColumnError{Column: c, Row: i, Err: ErrMissingValue}
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ColumnError{Column: c, Row: i, Err: ErrNonFinite}
			}
			row[c] = v
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func checkColumns(columns []string) error {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c == "" {
			return fmt.Errorf("empty column name")
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("column %q listed twice", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

func (t *Table) Has(column string) bool {
	return slices.Contains(t.columns, column)
}

// Row returns a copy of the i'th row in load order.
func (t *Table) Row(i int) Row {
	return t.rows[i].clone()
}

// Value returns the value of column in the i'th row.
func (t *Table) Value(i int, column string) (float64, bool) {
	v, ok := t.rows[i][column]
	return v, ok
}

// Range returns the smallest and largest value of column.
func (t *Table) Range(column string) (float64, float64, error) {
	if !t.Has(column) {
		return 0, 0, &ColumnError{Column: column, Row: -1, Err: ErrUnknownColumn}
	}
	if len(t.rows) == 0 {
		return 0, 0, ErrEmptyTable
	}
	min, max := math.Inf(1), math.Inf(-1)
	for _, r := range t.rows {
		v := r[column]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, nil
}

// Filter returns the rows of t whose column equals value exactly.  The
// result may be empty.
func Filter(t *Table, column string, value float64) (*Table, error) {
	if !t.Has(column) {
		return nil, &ColumnError{Column: column, Row: -1, Err: ErrUnknownColumn}
	}
	out := &Table{columns: t.columns}
	for _, r := range t.rows {
		if r[column] == value {
			out.rows = append(out.rows, r)
		}
	}
	return out, nil
}

// Distinct returns the distinct values of column in ascending order.
func Distinct(t *Table, column string) ([]float64, error) {
	if !t.Has(column) {
		return nil, &ColumnError{Column: column, Row: -1, Err: ErrUnknownColumn}
	}
	vals := make([]float64, 0, len(t.rows))
	for _, r := range t.rows {
		vals = append(vals, r[column])
	}
	slices.Sort(vals)
	return slices.Compact(vals), nil
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
