// Package mode describes the three kinds of steam-table query.  Each Mode is
// a declarative record naming the table it reads, its key column, an
// optional categorical filter column and the output columns it returns.
package mode

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	SatWaterTable       = "B1.1-Satd.Water"
	SatWaterPressTable  = "B1.2-Satd.WaterPressEntry"
	SuperheatedTable    = "B1.3-SuperheatedVapor"
	SatByTemperature    = "sat-t"
	SatByPressure       = "sat-p"
	SuperheatedVapor    = "superheat"
	suggestionThreshold = 3
)

// Properties of a saturated liquid-vapor mixture: specific volume,
// internal energy, enthalpy and entropy of the saturated liquid (f), the
// difference on evaporation (fg) and the saturated vapor (g).
var phaseProperties = []string{
	"v_f", "v_fg", "v_g",
	"u_f", "u_fg", "u_g",
	"h_f", "h_fg", "h_g",
	"s_f", "s_fg", "s_g",
}

type Mode struct {
	Name  string
	Title string
	Table string
	Key   string
	// Filter names a column whose value must be chosen from the distinct
	// values in the table before interpolating on Key.  Empty when the
	// mode has no categorical filter.
	Filter  string
	Outputs []string
	Units   map[string]string
	aliases []string
}

func (m *Mode) HasFilter() bool {
	return m.Filter != ""
}

// Columns returns every column the mode reads from its table.
func (m *Mode) Columns() []string {
	cols := []string{m.Key}
	if m.Filter != "" {
		cols = append(cols, m.Filter)
	}
	return append(cols, m.Outputs...)
}

// Unit returns the physical unit of column or the empty string.
func (m *Mode) Unit(column string) string {
	return m.Units[column]
}

// Label returns a short input label such as "Temperature (°C)".
func (m *Mode) Label(column string) string {
	name := column
	switch column {
	case "T":
		name = "Temperature"
	case "P":
		name = "Pressure"
	}
	if u := m.Unit(column); u != "" {
		return fmt.Sprintf("%s (%s)", name, u)
	}
	return name
}

func (m *Mode) IsOutput(column string) bool {
	for _, c := range m.Outputs {
		if c == column {
			return true
		}
	}
	return false
}

func (m *Mode) String() string {
	return m.Name
}

func saturated(unitP string) map[string]string {
	units := map[string]string{
		"T": "°C",
		"P": unitP,
	}
	for _, p := range phaseProperties {
		switch p[0] {
		case 'v':
			units[p] = "m³/kg"
		case 'u', 'h':
			units[p] = "kJ/kg"
		case 's':
			units[p] = "kJ/kg·K"
		}
	}
	return units
}

var modes = []*Mode{
	{
		Name:    SatByTemperature,
		Title:   "Saturated Water (by Temperature)",
		Table:   SatWaterTable,
		Key:     "T",
		Outputs: append([]string{"P"}, phaseProperties...),
		Units:   saturated("kPa"),
		aliases: []string{"temperature", "sat-temp", "satt"},
	},
	{
		Name:    SatByPressure,
		Title:   "Saturated Water (by Pressure)",
		Table:   SatWaterPressTable,
		Key:     "P",
		Outputs: append([]string{"T"}, phaseProperties...),
		Units:   saturated("kPa"),
		aliases: []string{"pressure", "sat-press", "satp"},
	},
	{
		Name:    SuperheatedVapor,
		Title:   "Superheated Vapor",
		Table:   SuperheatedTable,
		Key:     "T",
		Filter:  "P",
		Outputs: []string{"v", "u", "h", "s"},
		Units: map[string]string{
			"T": "°C",
			"P": "MPa",
			"v": "m³/kg",
			"u": "kJ/kg",
			"h": "kJ/kg",
			"s": "kJ/kg·K",
		},
		aliases: []string{"superheated", "vapor", "sh"},
	},
}

// All returns the modes in presentation order.
func All() []*Mode {
	return append([]*Mode(nil), modes...)
}

// Lookup finds a mode by name or alias, ignoring case.
func Lookup(name string) (*Mode, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, m := range modes {
		if m.Name == want {
			return m, nil
		}
		for _, a := range m.aliases {
			if a == want {
				return m, nil
			}
		}
	}
	if s := suggest(want); s != "" {
		return nil, fmt.Errorf("%w %q (did you mean %q?)", ErrNotFound, name, s)
	}
	return nil, fmt.Errorf("%w %q (options are %s)", ErrNotFound, name, strings.Join(Names(), ", "))
}

func Names() []string {
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, m.Name)
	}
	return names
}

func suggest(name string) string {
	best, dist := "", suggestionThreshold+1
	for _, m := range modes {
		for _, cand := range append([]string{m.Name}, m.aliases...) {
			if d := levenshtein.ComputeDistance(name, cand); d < dist {
				best, dist = m.Name, d
			}
		}
	}
	return best
}
