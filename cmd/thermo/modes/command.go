package modes

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/brimdata/thermo/api"
	"github.com/brimdata/thermo/cmd/thermo/internal/remote"
	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/output"
	"github.com/brimdata/thermo/pkg/charm"
	"github.com/brimdata/thermo/service"
)

var Cmd = &charm.Spec{
	Name:  "modes",
	Usage: "modes [options]",
	Short: "list query modes",
	Long: `
The modes command lists the query modes with the table each one reads, its
key and filter columns, the key range covered by the dataset and, for mode
superheat, the pressures that may be given as a filter.`,
	New: New,
}

type Command struct {
	*root.Command
	remote string
	token  string
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.remote, "remote", "", "URL of a thermo service to list modes from")
	f.StringVar(&c.token, "auth.token", "", "bearer token for -remote")
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) > 0 {
		return fmt.Errorf("modes takes no arguments")
	}
	infos, err := c.modes(ctx)
	if err != nil {
		return err
	}
	return Write(os.Stdout, infos)
}

func (c *Command) modes(ctx context.Context) ([]api.ModeInfo, error) {
	if c.remote != "" {
		return remote.New(c.remote, c.token).Connection().Modes(ctx)
	}
	ds, err := c.DataFlags.Open(ctx)
	if err != nil {
		return nil, err
	}
	var infos []api.ModeInfo
	for _, m := range mode.All() {
		info, err := service.ModeInfo(ds, m)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Write writes infos to w as an aligned table.
func Write(w io.Writer, infos []api.ModeInfo) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tTABLE\tKEY\tRANGE\tFILTER\tTITLE")
	for _, info := range infos {
		filter := "-"
		if info.Filter != "" {
			filter = fmt.Sprintf("%s in {%s} %s", info.Filter, join(info.Choices), info.Units[info.Filter])
		}
		keyRange := fmt.Sprintf("%s..%s %s",
			output.FormatValue(info.Min, -1),
			output.FormatValue(info.Max, -1),
			info.Units[info.Key])
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			info.Name, info.Table, info.Key, strings.TrimSpace(keyRange), filter, info.Title)
	}
	return tw.Flush()
}

func join(vals []float64) string {
	s := make([]string, 0, len(vals))
	for _, v := range vals {
		s = append(s, output.FormatValue(v, -1))
	}
	return strings.Join(s, ", ")
}

