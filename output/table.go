package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/brimdata/thermo/query"
)

// TableWriter aligns results in columns, one row per result.  A new header
// is written whenever the columns change.
type TableWriter struct {
	writer io.WriteCloser
	table  *tabwriter.Writer
	opts   WriterOpts
	cols   []column
}

func NewTableWriter(w io.WriteCloser, opts WriterOpts) *TableWriter {
	return &TableWriter{
		writer: w,
		table:  tabwriter.NewWriter(w, 0, 8, 2, ' ', 0),
		opts:   opts,
	}
}

func (t *TableWriter) Write(res *query.Result) error {
	cols := columns(res)
	if !sameColumns(cols, t.cols) {
		if t.cols != nil {
			if err := t.table.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(t.writer)
		}
		t.cols = cols
		hdr := make([]string, 0, len(cols))
		for _, c := range cols {
			hdr = append(hdr, c.header(t.opts.Units))
		}
		fmt.Fprintln(t.table, strings.Join(hdr, "\t"))
	}
	_, err := fmt.Fprintln(t.table, strings.Join(values(res, t.opts.Precision), "\t"))
	return err
}

func (t *TableWriter) Close() error {
	err := t.table.Flush()
	if closeErr := t.writer.Close(); err == nil {
		err = closeErr
	}
	return err
}
