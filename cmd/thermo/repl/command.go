package repl

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/brimdata/thermo/cli/outputflags"
	"github.com/brimdata/thermo/cli/queryflags"
	"github.com/brimdata/thermo/cmd/thermo/internal/remote"
	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/output"
	"github.com/brimdata/thermo/pkg/charm"
	"github.com/brimdata/thermo/pkg/repl"
	"github.com/brimdata/thermo/query"
	"github.com/brimdata/thermo/querycache"
)

var Cmd = &charm.Spec{
	Name:  "repl",
	Usage: "repl [options]",
	Short: "look up properties interactively",
	Long: `
The repl command reads key values from the terminal and prints the
properties at each one for the current mode.  Type "help" at the prompt for
the commands that change the mode, filter and properties.`,
	New: New,
}

type Command struct {
	*root.Command
	outputFlags outputflags.Flags
	queryFlags  queryflags.Flags
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.outputFlags.SetFormatFlags(f)
	c.queryFlags.SetFlags(f)
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init(&c.outputFlags, &c.queryFlags)
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) > 0 {
		return fmt.Errorf("repl takes no arguments")
	}
	var runner querycache.Runner
	if c.queryFlags.Remote != "" {
		runner = remote.New(c.queryFlags.Remote, c.queryFlags.Token)
	} else {
		ds, err := c.DataFlags.Open(ctx)
		if err != nil {
			return err
		}
		runner = queryflags.Local(ds)
	}
	s := NewSession(ctx, runner, os.Stdout, c.outputFlags.Options())
	s.Mode = c.queryFlags.Mode
	s.Filter = c.queryFlags.Filter.Ptr()
	s.Outputs = c.queryFlags.Outputs
	return repl.Run(s)
}

const help = `commands:
  <value> [<value> ...]   look up properties at each key value
  mode [<name>]           show or change the mode (%s)
  filter [<value>|none]   show, set or clear the filter value
  props [<name>,...]      set the properties to show (none for all)
  help                    show this message
  quit                    leave
`

var commands = []string{"filter", "help", "mode", "props", "quit"}

// Session holds the state of an interactive lookup session and implements
// repl.Consumer.
type Session struct {
	Mode    string
	Filter  *float64
	Outputs []string

	ctx    context.Context
	runner querycache.Runner
	w      io.Writer
	opts   output.WriterOpts
}

func NewSession(ctx context.Context, runner querycache.Runner, w io.Writer, opts output.WriterOpts) *Session {
	return &Session{
		Mode:   mode.SatByTemperature,
		ctx:    ctx,
		runner: runner,
		w:      w,
		opts:   opts,
	}
}

func (s *Session) Prompt() string {
	if s.Filter != nil {
		return fmt.Sprintf("%s(%s)> ", s.Mode, output.FormatValue(*s.Filter, -1))
	}
	return s.Mode + "> "
}

// Consume evaluates line and reports whether the session is over.
func (s *Session) Consume(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	args := fields[1:]
	switch fields[0] {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintf(s.w, help, strings.Join(mode.Names(), ", "))
	case "mode":
		s.setMode(args)
	case "filter":
		s.setFilter(args)
	case "props":
		s.setOutputs(args)
	default:
		s.query(fields)
	}
	return false
}

func (s *Session) Complete(line string) []string {
	if strings.HasPrefix(line, "mode ") {
		prefix := strings.TrimSpace(strings.TrimPrefix(line, "mode"))
		var out []string
		for _, name := range mode.Names() {
			if strings.HasPrefix(name, prefix) {
				out = append(out, "mode "+name)
			}
		}
		return out
	}
	var out []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, line) {
			out = append(out, cmd)
		}
	}
	return out
}

func (s *Session) setMode(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.w, s.Mode)
		return
	}
	m, err := mode.Lookup(args[0])
	if err != nil {
		s.error(err)
		return
	}
	if m.Name != s.Mode {
		s.Filter = nil
		s.Outputs = nil
	}
	s.Mode = m.Name
}

func (s *Session) setFilter(args []string) {
	if len(args) == 0 {
		if s.Filter == nil {
			fmt.Fprintln(s.w, "none")
		} else {
			fmt.Fprintln(s.w, output.FormatValue(*s.Filter, -1))
		}
		return
	}
	if args[0] == "none" {
		s.Filter = nil
		return
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		s.error(fmt.Errorf("filter %q is not a number", args[0]))
		return
	}
	s.Filter = &v
}

func (s *Session) setOutputs(args []string) {
	var list queryflags.List
	if len(args) > 0 && args[0] != "none" {
		list.Set(strings.Join(args, ","))
	}
	s.Outputs = list
}

func (s *Session) query(fields []string) {
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			s.error(fmt.Errorf("unknown command or value %q (type help for commands)", f))
			return
		}
		values = append(values, v)
	}
	w, err := output.NewWriter(nopCloser{s.w}, s.opts)
	if err != nil {
		s.error(err)
		return
	}
	defer w.Close()
	for _, v := range values {
		res, err := s.runner.Run(s.ctx, query.Request{
			Mode:    s.Mode,
			Value:   v,
			Filter:  s.Filter,
			Outputs: s.Outputs,
		})
		if err != nil {
			s.error(err)
			continue
		}
		if err := w.Write(res); err != nil {
			s.error(err)
		}
	}
}

func (s *Session) error(err error) {
	fmt.Fprintf(s.w, "error: %s\n", err)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
