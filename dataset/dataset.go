// Package dataset loads the steam tables that back each query mode and
// holds them, together with the indexes built from them, for the lifetime
// of the process.
package dataset

import (
	"fmt"
	"strings"

	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/table"
	"golang.org/x/exp/slices"
)

// Sheets lists the tables a dataset must provide.
var Sheets = []string{
	mode.SatWaterTable,
	mode.SatWaterPressTable,
	mode.SuperheatedTable,
}

// Dataset is read-only once built and safe for concurrent use.
type Dataset struct {
	source  string
	tables  map[string]*table.Table
	indexes map[string]*table.Index
	slices  map[string]map[float64]*table.Index
	choices map[string][]float64
}

// New builds a Dataset from tables keyed by sheet name.  Every mode's key
// column is verified here so that a dataset with duplicate keys is
// rejected at load time rather than on the first query that touches it.
func New(source string, tables map[string]*table.Table) (*Dataset, error) {
	d := &Dataset{
		source:  source,
		tables:  make(map[string]*table.Table),
		indexes: make(map[string]*table.Index),
		slices:  make(map[string]map[float64]*table.Index),
		choices: make(map[string][]float64),
	}
	for _, m := range mode.All() {
		t, ok := tables[m.Table]
		if !ok {
			return nil, &LoadError{Source: source, Sheet: m.Table, Err: ErrMissingSheet}
		}
		if t.Len() == 0 {
			return nil, &LoadError{Source: source, Sheet: m.Table, Err: ErrEmptySheet}
		}
		d.tables[m.Table] = t
		if err := d.index(m, t); err != nil {
			return nil, &LoadError{Source: source, Sheet: m.Table, Column: m.Key, Err: err}
		}
	}
	return d, nil
}

func (d *Dataset) index(m *mode.Mode, t *table.Table) error {
	if !m.HasFilter() {
		x, err := table.NewIndex(t, m.Key)
		if err != nil {
			return err
		}
		d.indexes[m.Name] = x
		return nil
	}
	choices, err := table.Distinct(t, m.Filter)
	if err != nil {
		return err
	}
	byValue := make(map[float64]*table.Index, len(choices))
	for _, v := range choices {
		slice, err := table.Filter(t, m.Filter, v)
		if err != nil {
			return err
		}
		x, err := table.NewIndex(slice, m.Key)
		if err != nil {
			return fmt.Errorf("%s = %s: %w", m.Filter, formatFloat(v, 64), err)
		}
		byValue[v] = x
	}
	d.slices[m.Name] = byValue
	d.choices[m.Name] = choices
	return nil
}

func (d *Dataset) Source() string {
	return d.source
}

// Table returns the table loaded for sheet or nil.
func (d *Dataset) Table(sheet string) *table.Table {
	return d.tables[sheet]
}

// Index returns the prebuilt index of a mode without a filter column.
func (d *Dataset) Index(m *mode.Mode) (*table.Index, error) {
	if m.HasFilter() {
		return nil, fmt.Errorf("%s: %w on %s", m.Name, ErrNeedsFilter, m.Filter)
	}
	x, ok := d.indexes[m.Name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", m.Name, mode.ErrNotFound)
	}
	return x, nil
}

// Slice returns the index over the rows of m's table whose filter column
// equals value exactly.
func (d *Dataset) Slice(m *mode.Mode, value float64) (*table.Index, error) {
	if !m.HasFilter() {
		return nil, fmt.Errorf("%s: %w", m.Name, ErrNoFilter)
	}
	x, ok := d.slices[m.Name][value]
	if !ok {
		return nil, fmt.Errorf("%w: no rows with %s = %s (choices are %s)",
			table.ErrEmptyTable, m.Filter, formatFloat(value, 64), joinFloats(d.choices[m.Name]))
	}
	return x, nil
}

// Choices returns the sorted distinct values of m's filter column, or nil
// for a mode without one.
func (d *Dataset) Choices(m *mode.Mode) []float64 {
	return slices.Clone(d.choices[m.Name])
}

// Range returns the smallest and largest tabulated key of m.  For a mode
// with a filter, the range spans the whole table rather than one slice.
func (d *Dataset) Range(m *mode.Mode) (float64, float64, error) {
	if x, ok := d.indexes[m.Name]; ok {
		return x.Min(), x.Max(), nil
	}
	t, ok := d.tables[m.Table]
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", m.Name, mode.ErrNotFound)
	}
	return t.Range(m.Key)
}

func joinFloats(vals []float64) string {
	s := make([]string, 0, len(vals))
	for _, v := range vals {
		s = append(s, formatFloat(v, 64))
	}
	return strings.Join(s, ", ")
}
