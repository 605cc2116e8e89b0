// Package query answers property lookups against a dataset.  It validates
// a request against its mode, applies the mode's categorical filter and
// hands the lookup to the table engine.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/service/srverr"
	"github.com/brimdata/thermo/table"
	"golang.org/x/exp/slices"
)

type Request struct {
	Mode  string
	Value float64
	// Filter is the value of the mode's filter column and must be nil
	// for a mode without one.
	Filter  *float64
	Outputs []string
}

type Property struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

type Result struct {
	Mode         string     `json:"mode"`
	Key          string     `json:"key"`
	Value        float64    `json:"value"`
	FilterColumn string     `json:"filter_column,omitempty"`
	Filter       *float64   `json:"filter,omitempty"`
	Exact        bool       `json:"exact"`
	Lower        float64    `json:"lower"`
	Upper        float64    `json:"upper"`
	Values       []Property `json:"values"`
}

// Get returns the value of the named property.
func (r *Result) Get(name string) (float64, bool) {
	for _, p := range r.Values {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}

// Map returns the property values keyed by name.
func (r *Result) Map() map[string]float64 {
	m := make(map[string]float64, len(r.Values))
	for _, p := range r.Values {
		m[p.Name] = p.Value
	}
	return m
}

// Resolve checks req against its mode and returns the mode along with the
// outputs to compute.
func Resolve(ds *dataset.Dataset, req Request) (*mode.Mode, []string, error) {
	m, err := mode.Lookup(req.Mode)
	if err != nil {
		return nil, nil, srverr.ErrNotFound(err)
	}
	outputs := req.Outputs
	if len(outputs) == 0 {
		outputs = m.Outputs
	}
	for _, o := range outputs {
		if !m.IsOutput(o) {
			return nil, nil, srverr.ErrInvalid("%s: %q is not an output (outputs are %s)", m.Name, o, strings.Join(m.Outputs, ", "))
		}
	}
	switch {
	case m.HasFilter() && req.Filter == nil:
		return nil, nil, srverr.ErrInvalid("%s: a %s value is required (choices are %s)", m.Name, m.Label(m.Filter), join(ds.Choices(m)))
	case m.HasFilter() && !slices.Contains(ds.Choices(m), *req.Filter):
		return nil, nil, srverr.ErrInvalid("%s: %s = %s is not tabulated (choices are %s)", m.Name, m.Filter, format(*req.Filter), join(ds.Choices(m)))
	case !m.HasFilter() && req.Filter != nil:
		return nil, nil, srverr.ErrInvalid("%s: mode takes no filter value", m.Name)
	}
	return m, outputs, nil
}

// Run answers req from ds.
func Run(ds *dataset.Dataset, req Request) (*Result, error) {
	m, outputs, err := Resolve(ds, req)
	if err != nil {
		return nil, err
	}
	var x *table.Index
	if m.HasFilter() {
		x, err = ds.Slice(m, *req.Filter)
	} else {
		x, err = ds.Index(m)
	}
	if err != nil {
		return nil, classify(err)
	}
	res, err := x.Lookup(req.Value, outputs)
	if err != nil {
		return nil, classify(err)
	}
	out := &Result{
		Mode:         m.Name,
		Key:          m.Key,
		Value:        req.Value,
		FilterColumn: m.Filter,
		Exact:        res.Exact,
		Lower:        res.Lower,
		Upper:        res.Upper,
		Values:       make([]Property, 0, len(outputs)),
	}
	if req.Filter != nil {
		f := *req.Filter
		out.Filter = &f
	}
	for _, o := range outputs {
		out.Values = append(out.Values, Property{
			Name:  o,
			Value: res.Values[o],
			Unit:  m.Unit(o),
		})
	}
	return out, nil
}

// classify gives engine errors caused by the request an Invalid kind.
func classify(err error) error {
	switch {
	case errors.Is(err, table.ErrOutOfRange), errors.Is(err, table.ErrEmptyTable), errors.Is(err, table.ErrUnknownColumn):
		return srverr.ErrInvalid(err)
	}
	return err
}

func format(v float64) string {
	return fmt.Sprint(v)
}

func join(vals []float64) string {
	s := make([]string, 0, len(vals))
	for _, v := range vals {
		s = append(s, format(v))
	}
	return strings.Join(s, ", ")
}
