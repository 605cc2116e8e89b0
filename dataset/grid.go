package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/table"
)

// grid is a sheet as read from its source: a header row followed by rows
// of cell text.  Every format is decoded to a grid so that parsing and
// validation are the same regardless of where the numbers came from.
type grid struct {
	header []string
	rows   [][]string
}

func (g *grid) column(name string) int {
	for i, h := range g.header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// buildTable extracts the columns m needs from g.  Columns the mode does not
// use are ignored and rows with no text at all are skipped.  The returned
// *LoadError has neither Source nor Sheet set.
func buildTable(g *grid, m *mode.Mode) (*table.Table, error) {
	cols := m.Columns()
	pos := make([]int, len(cols))
	for i, c := range cols {
		if pos[i] = g.column(c); pos[i] < 0 {
			return nil, &LoadError{Column: c, Err: ErrMissingColumn}
		}
	}
	rows := make([]table.Row, 0, len(g.rows))
	for i, cells := range g.rows {
		if blank(cells) {
			continue
		}
		line := i + 2
		row := make(table.Row, len(cols))
		for k, c := range cols {
			var cell string
			if pos[k] < len(cells) {
				cell = strings.TrimSpace(cells[pos[k]])
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, &LoadError{Column: c, Row: line, Err: err}
			}
			row[c] = v
		}
		rows = append(rows, row)
	}
	t, err := table.New(cols, rows)
	if err != nil {
		lerr := &LoadError{Err: err}
		var cerr *table.ColumnError
		if errors.As(err, &cerr) {
			lerr.Column = cerr.Column
		}
		return nil, lerr
	}
	return t, nil
}

func parseCell(cell string) (float64, error) {
	if cell == "" {
		return 0, ErrEmptyCell
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", table.ErrNonFinite, cell)
	}
	return v, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func formatFloat(v float64, bits int) string {
	return strconv.FormatFloat(v, 'g', -1, bits)
}
