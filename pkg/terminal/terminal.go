// Package terminal reports on the terminal attached to a file.
package terminal

import (
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

func IsTerminalFile(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the width of the terminal on stdout, or 80 when stdout is
// not a terminal.
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
