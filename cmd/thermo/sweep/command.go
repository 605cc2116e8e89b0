package sweep

import (
	"flag"
	"runtime"

	"github.com/brimdata/thermo/cli/outputflags"
	"github.com/brimdata/thermo/cli/queryflags"
	"github.com/brimdata/thermo/cmd/thermo/internal/remote"
	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/pkg/charm"
	"github.com/brimdata/thermo/query"
)

var Cmd = &charm.Spec{
	Name:  "sweep",
	Usage: "sweep [options] -from value -to value -step value",
	Short: "look up properties across a range of key values",
	Long: `
The sweep command runs the query described by -mode, -filter and -props at
every key value from -from to -to in increments of -step and writes the
results in key order.  The table and csv output formats suit sweeps best.

Points are computed in parallel by up to -workers goroutines.  Any point
outside the table's range fails the whole sweep.`,
	New: New,
}

type Command struct {
	*root.Command
	outputFlags outputflags.Flags
	queryFlags  queryflags.Flags
	from        queryflags.OptionalFloat
	to          queryflags.OptionalFloat
	step        float64
	workers     int
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.outputFlags.DefaultFormat = "table"
	c.outputFlags.SetFlags(f)
	c.queryFlags.SetFlags(f)
	f.Var(&c.from, "from", "first key value")
	f.Var(&c.to, "to", "last key value")
	f.Float64Var(&c.step, "step", 1, "increment between key values")
	f.IntVar(&c.workers, "workers", runtime.GOMAXPROCS(0), "number of points to compute in parallel")
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init(&c.outputFlags, &c.queryFlags)
	if err != nil {
		return err
	}
	defer cleanup()
	from, to := c.from.Ptr(), c.to.Ptr()
	if from == nil || to == nil || len(args) > 0 {
		return charm.NeedHelp
	}
	req := c.queryFlags.Request(0)
	var results []*query.Result
	if c.queryFlags.Remote != "" {
		results, err = remote.New(c.queryFlags.Remote, c.queryFlags.Token).Sweep(ctx, req, *from, *to, c.step)
	} else {
		ds, derr := c.DataFlags.Open(ctx)
		if derr != nil {
			return derr
		}
		results, err = query.Sweep(ctx, ds, req, *from, *to, c.step, c.workers)
	}
	if err != nil {
		return err
	}
	w, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	for _, res := range results {
		if err := w.Write(res); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}
