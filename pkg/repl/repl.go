// Package repl is a simple read-eval-print loop.  It calls the Consumer
// to do all the eval work.
package repl

import (
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"
)

type Consumer interface {
	Consume(line string) bool
	Prompt() string
}

// Completer is implemented by a Consumer that can complete a partial line.
type Completer interface {
	Complete(line string) []string
}

// Run executes the REPL until the Consumer is done or input ends.  An
// aborted line (Ctrl-C) is discarded.
func Run(c Consumer) error {
	l := liner.NewLiner()
	defer l.Close()
	l.SetMultiLineMode(true)
	l.SetCtrlCAborts(true)
	if completer, ok := c.(Completer); ok {
		l.SetCompleter(completer.Complete)
	}
	for {
		line, err := l.Prompt(c.Prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if c.Consume(line) {
			return nil
		}
		if strings.TrimSpace(line) != "" {
			l.AppendHistory(line)
		}
	}
}
