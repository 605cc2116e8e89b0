package check

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/output"
	"github.com/brimdata/thermo/pkg/charm"
	"github.com/brimdata/thermo/pkg/plural"
)

var Cmd = &charm.Spec{
	Name:  "check",
	Usage: "check [options]",
	Short: "load a dataset and summarize its tables",
	Long: `
The check command loads the dataset selected by -data and reports, for each
mode, the table it reads, the number of rows and columns, and the key range.
Loading verifies that every required sheet and column is present, that
every cell is a finite number and that key values are unique, so a
successful check means every query against the dataset can be answered.
A failed load names the sheet, row and column at fault.`,
	New: New,
}

type Command struct {
	*root.Command
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	return &Command{Command: parent.(*root.Command)}, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) > 0 {
		return fmt.Errorf("check takes no arguments")
	}
	ds, err := c.DataFlags.Open(ctx)
	if err != nil {
		return err
	}
	summaries, err := Summarize(ds)
	if err != nil {
		return err
	}
	fmt.Printf("%s: ok\n", ds.Source())
	return Write(os.Stdout, summaries)
}

type Summary struct {
	Mode    string
	Table   string
	Rows    int
	Columns []string
	Key     string
	Min     float64
	Max     float64
	Unit    string
	Filter  string
	Choices []float64
}

func Summarize(ds *dataset.Dataset) ([]Summary, error) {
	var summaries []Summary
	for _, m := range mode.All() {
		t := ds.Table(m.Table)
		if t == nil {
			return nil, fmt.Errorf("%s: %w", m.Table, dataset.ErrMissingSheet)
		}
		min, max, err := ds.Range(m)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summary{
			Mode:    m.Name,
			Table:   m.Table,
			Rows:    t.Len(),
			Columns: t.Columns(),
			Key:     m.Key,
			Min:     min,
			Max:     max,
			Unit:    m.Unit(m.Key),
			Filter:  m.Filter,
			Choices: ds.Choices(m),
		})
	}
	return summaries, nil
}

func Write(w io.Writer, summaries []Summary) error {
	for _, s := range summaries {
		_, err := fmt.Fprintf(w, "%s (%s): %d row%s, %d column%s, %s from %s to %s %s\n",
			s.Table, s.Mode,
			s.Rows, plural.Of(s.Rows, "s"),
			len(s.Columns), plural.Slice(s.Columns, "s"),
			s.Key, output.FormatValue(s.Min, -1), output.FormatValue(s.Max, -1), s.Unit)
		if err != nil {
			return err
		}
		if s.Filter != "" {
			vals := make([]string, 0, len(s.Choices))
			for _, v := range s.Choices {
				vals = append(vals, output.FormatValue(v, -1))
			}
			if _, err := fmt.Fprintf(w, "  %s: %s\n", s.Filter, strings.Join(vals, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}
