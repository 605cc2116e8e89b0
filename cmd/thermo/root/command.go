package root

import (
	"context"
	"flag"
	"os"

	"github.com/brimdata/thermo/cli"
	"github.com/brimdata/thermo/cli/dataflags"
	"github.com/brimdata/thermo/cli/logflags"
	"github.com/brimdata/thermo/pkg/charm"
	"go.uber.org/zap"
)

var Thermo = &charm.Spec{
	Name:  "thermo",
	Usage: "thermo <command> [options] [arguments...]",
	Short: "look up steam table properties",
	Long: `
thermo answers thermodynamic property lookups for water and steam by linear
interpolation between the rows of three tables: saturated water by
temperature (mode sat-t), saturated water by pressure (mode sat-p) and
superheated vapor by temperature at a chosen pressure (mode superheat).
Values outside a table's range are rejected; thermo never extrapolates.

The tables come from a built-in dataset unless -data names a workbook,
yaml file or directory of csv, parquet or arrows files, on the local file
system or at an http(s) or s3 URL.`,
	New: New,
}

type Command struct {
	charm.Command
	cli.Flags
	DataFlags dataflags.Flags
	LogFlags  logflags.Flags
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	c.SetFlags(f)
	c.DataFlags.SetFlags(f)
	c.LogFlags.SetFlags(f)
	return c, nil
}

// Init initializes the root flags along with all.
func (c *Command) Init(all ...cli.Initializer) (context.Context, func(), error) {
	return c.Flags.Init(append([]cli.Initializer{&c.DataFlags}, all...)...)
}

func (c *Command) InitWithSignals(all []cli.Initializer, sigs ...os.Signal) (context.Context, func(), error) {
	return c.Flags.InitWithSignals(append([]cli.Initializer{&c.DataFlags}, all...), sigs...)
}

// Logger opens the logger selected by the log flags.
func (c *Command) Logger() (*zap.Logger, error) {
	return c.LogFlags.Open()
}

func (c *Command) Run(args []string) error {
	_, cancel, err := c.Init()
	if err != nil {
		return err
	}
	defer cancel()
	if len(args) == 0 {
		return charm.NeedHelp
	}
	return charm.ErrNoRun
}
