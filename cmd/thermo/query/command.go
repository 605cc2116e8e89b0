package query

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/brimdata/thermo/cli/outputflags"
	"github.com/brimdata/thermo/cli/queryflags"
	"github.com/brimdata/thermo/cmd/thermo/internal/remote"
	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/pkg/charm"
	"github.com/brimdata/thermo/querycache"
)

var Cmd = &charm.Spec{
	Name:  "query",
	Usage: "query [options] value [value ...]",
	Short: "look up properties at one or more key values",
	Long: `
The query command looks up the properties of the -mode table at each value
given as an argument.  The key is temperature in °C for modes sat-t and
superheat and pressure in kPa for mode sat-p.  Mode superheat also needs
-filter, a pressure in MPa chosen from those listed by "thermo pressures".

A value that matches a tabulated row exactly returns that row.  Otherwise
the two rows that bracket the value are linearly interpolated.  A value
outside the table is an error.

With -remote, queries are sent to a thermo service instead of being
answered from the local dataset.`,
	New: New,
}

type Command struct {
	*root.Command
	outputFlags outputflags.Flags
	queryFlags  queryflags.Flags
	value       queryflags.OptionalFloat
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.outputFlags.SetFlags(f)
	c.queryFlags.SetFlags(f)
	f.Var(&c.value, "value", "key value to look up (or give values as arguments)")
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init(&c.outputFlags, &c.queryFlags)
	if err != nil {
		return err
	}
	defer cleanup()
	values, err := parseValues(c.value.Ptr(), args)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return charm.NeedHelp
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
	w, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	for _, v := range values {
		res, err := runner.Run(ctx, c.queryFlags.Request(v))
		if err == nil {
			err = w.Write(res)
		}
		if err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

func parseValues(flagValue *float64, args []string) ([]float64, error) {
	var values []float64
	if flagValue != nil {
		values = append(values, *flagValue)
	}
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			var nerr *strconv.NumError
			if errors.As(err, &nerr) {
				err = nerr.Err
			}
			return nil, fmt.Errorf("value %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return values, nil
}
