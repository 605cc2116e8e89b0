// Package output renders query results as json, text, table or csv.
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/query"
)

type Writer interface {
	Write(*query.Result) error
	Close() error
}

type WriterOpts struct {
	Format string
	// Precision is the number of significant digits shown for each
	// value, or -1 for the fewest digits that represent it exactly.
	Precision int
	Units     bool
	Color     bool
}

var Formats = []string{"text", "table", "json", "csv"}

func NewWriter(w io.WriteCloser, opts WriterOpts) (Writer, error) {
	switch opts.Format {
	case "text", "":
		return NewTextWriter(w, opts), nil
	case "table":
		return NewTableWriter(w, opts), nil
	case "json":
		return NewJSONWriter(w, opts), nil
	case "csv":
		return NewCSVWriter(w, opts), nil
	}
	return nil, fmt.Errorf("unknown output format: %q", opts.Format)
}

// FormatValue formats exact and interpolated values alike.
func FormatValue(v float64, precision int) string {
	if precision == 0 || precision < -1 {
		precision = -1
	}
	return strconv.FormatFloat(v, 'g', precision, 64)
}

// column is one column of tabular output.
type column struct {
	name string
	unit string
}

func (c column) header(units bool) string {
	if units && c.unit != "" {
		return fmt.Sprintf("%s (%s)", c.name, c.unit)
	}
	return c.name
}

// columns lays out res as key, then filter, then outputs.
func columns(res *query.Result) []column {
	var keyUnit, filterUnit string
	if m, err := mode.Lookup(res.Mode); err == nil {
		keyUnit = m.Unit(res.Key)
		filterUnit = m.Unit(res.FilterColumn)
	}
	cols := []column{{res.Key, keyUnit}}
	if res.Filter != nil {
		cols = append(cols, column{res.FilterColumn, filterUnit})
	}
	for _, p := range res.Values {
		cols = append(cols, column{p.Name, p.Unit})
	}
	return cols
}

func values(res *query.Result, precision int) []string {
	vals := []string{FormatValue(res.Value, precision)}
	if res.Filter != nil {
		vals = append(vals, FormatValue(*res.Filter, precision))
	}
	for _, p := range res.Values {
		vals = append(vals, FormatValue(p.Value, precision))
	}
	return vals
}

func sameColumns(a, b []column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
