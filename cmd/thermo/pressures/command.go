package pressures

import (
	"flag"
	"fmt"

	"github.com/brimdata/thermo/cmd/thermo/internal/remote"
	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/output"
	"github.com/brimdata/thermo/pkg/charm"
)

var Cmd = &charm.Spec{
	Name:  "pressures",
	Usage: "pressures [options]",
	Short: "list the pressures of the superheated vapor table",
	Long: `
The pressures command prints, one per line in MPa, the pressures for which
the superheated vapor table has rows.  These are the values accepted by
"thermo query -mode superheat -filter".`,
	New: New,
}

type Command struct {
	*root.Command
	remote string
	token  string
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.remote, "remote", "", "URL of a thermo service to ask")
	f.StringVar(&c.token, "auth.token", "", "bearer token for -remote")
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	var choices []float64
	if c.remote != "" {
		info, err := remote.New(c.remote, c.token).Connection().Mode(ctx, mode.SuperheatedVapor)
		if err != nil {
			return err
		}
		choices = info.Choices
	} else {
		ds, err := c.DataFlags.Open(ctx)
		if err != nil {
			return err
		}
		m, err := mode.Lookup(mode.SuperheatedVapor)
		if err != nil {
			return err
		}
		choices = ds.Choices(m)
	}
	for _, p := range choices {
		fmt.Println(output.FormatValue(p, -1))
	}
	return nil
}
