package table

import (
	"fmt"
	"math"
	"sort"
)

// Index is a table's rows ordered by ascending key.  Keys are verified to be
// strictly increasing when the index is built, so an Index never holds two
// rows with the same key.
type Index struct {
	key  string
	rows []Row
}

// Result is the outcome of a lookup.  When Exact is true, Values are the
// tabulated values of the row whose key equals the query and Lower equals
// Upper.  Otherwise Lower and Upper are the keys of the bracketing rows.
type Result struct {
	Values map[string]float64
	Exact  bool
	Lower  float64
	Upper  float64
}

func NewIndex(t *Table, key string) (*Index, error) {
	if !t.Has(key) {
		return nil, &ColumnError{Column: key, Row: -1, Err: ErrUnknownColumn}
	}
	rows := make([]Row, len(t.rows))
	copy(rows, t.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][key] < rows[j][key]
	})
	for i := 1; i < len(rows); i++ {
		if !(rows[i-1][key] < rows[i][key]) {
			return nil, fmt.Errorf("%w: %s = %s", ErrDuplicateKey, key, format(rows[i][key]))
		}
	}
	return &Index{key: key, rows: rows}, nil
}

func (x *Index) Key() string {
	return x.key
}

func (x *Index) Len() int {
	return len(x.rows)
}

func (x *Index) Min() float64 {
	if len(x.rows) == 0 {
		return math.NaN()
	}
	return x.rows[0][x.key]
}

func (x *Index) Max() float64 {
	if len(x.rows) == 0 {
		return math.NaN()
	}
	return x.rows[len(x.rows)-1][x.key]
}

// Lookup returns the outputs at value.  An exact key match returns the
// tabulated row unmodified; otherwise the two bracketing rows are linearly
// interpolated.  Values outside [Min, Max] are never extrapolated.
func (x *Index) Lookup(value float64, outputs []string) (Result, error) {
	if len(x.rows) == 0 {
		return Result{}, ErrEmptyTable
	}
	for _, c := range outputs {
		if _, ok := x.rows[0][c]; !ok {
			return Result{}, &ColumnError{Column: c, Row: -1, Err: ErrUnknownColumn}
		}
	}
	min, max := x.Min(), x.Max()
	// NaN fails both comparisons and so lands here too.
	if !(value >= min && value <= max) {
		return Result{}, &OutOfRangeError{Key: x.key, Value: value, Min: min, Max: max}
	}
	// Smallest i with key >= value.  It exists since value <= max.
	i := sort.Search(len(x.rows), func(i int) bool {
		return x.rows[i][x.key] >= value
	})
	upper := x.rows[i]
	if upper[x.key] == value {
		vals := make(map[string]float64, len(outputs))
		for _, c := range outputs {
			vals[c] = upper[c]
		}
		return Result{Values: vals, Exact: true, Lower: value, Upper: value}, nil
	}
	// No exact match and value >= min, so i > 0.
	lower := x.rows[i-1]
	k0, k1 := lower[x.key], upper[x.key]
	frac := (value - k0) / (k1 - k0)
	vals := make(map[string]float64, len(outputs))
	for _, c := range outputs {
		vals[c] = lower[c] + frac*(upper[c]-lower[c])
	}
	return Result{Values: vals, Lower: k0, Upper: k1}, nil
}

// Interpolate looks up value in column key of t and returns the requested
// outputs.  It sorts and verifies t on every call; callers issuing many
// queries against one table should build an Index once instead.
func Interpolate(t *Table, key string, value float64, outputs []string) (map[string]float64, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}
	x, err := NewIndex(t, key)
	if err != nil {
		return nil, err
	}
	res, err := x.Lookup(value, outputs)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}
