// Package color emits ANSI escape sequences for terminal output.
package color

import "fmt"

// Enabled is cleared when output is not going to a terminal.
var Enabled = true

type Code int

const (
	Reset  Code = 0
	Bold   Code = 1
	Red    Code = 31
	Green  Code = 32
	Yellow Code = 33
	Blue   Code = 34
	Gray   Code = 90
)

func (c Code) String() string {
	return fmt.Sprintf("\033[%dm", int(c))
}

// Colorize wraps s in c and a reset when color is enabled.
func (c Code) Colorize(s string) string {
	if !Enabled {
		return s
	}
	return c.String() + s + Reset.String()
}
