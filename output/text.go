package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/brimdata/thermo/pkg/terminal/color"
	"github.com/brimdata/thermo/query"
)

// TextWriter writes one "name = value unit" line per property, preceded by
// a line describing the lookup.
type TextWriter struct {
	writer io.WriteCloser
	opts   WriterOpts
	n      int
}

func NewTextWriter(w io.WriteCloser, opts WriterOpts) *TextWriter {
	return &TextWriter{writer: w, opts: opts}
}

func (t *TextWriter) Write(res *query.Result) error {
	var b strings.Builder
	if t.n > 0 {
		b.WriteByte('\n')
	}
	t.n++
	cols := columns(res)
	vals := values(res, t.opts.Precision)
	given := 1
	if res.Filter != nil {
		given = 2
	}
	var lookup []string
	for i := 0; i < given; i++ {
		lookup = append(lookup, t.pair(cols[i], vals[i]))
	}
	fmt.Fprintf(&b, "# %s: %s", res.Mode, strings.Join(lookup, ", "))
	if res.Exact {
		b.WriteString(" (tabulated)\n")
	} else {
		fmt.Fprintf(&b, " (interpolated between %s = %s and %s)\n", res.Key,
			FormatValue(res.Lower, t.opts.Precision), FormatValue(res.Upper, t.opts.Precision))
	}
	var stack color.Stack
	for i := given; i < len(cols); i++ {
		if t.opts.Color {
			b.WriteString(stack.Push(color.Blue))
		}
		b.WriteString(cols[i].name)
		if t.opts.Color {
			b.WriteString(stack.Pop())
		}
		b.WriteString(" = ")
		b.WriteString(vals[i])
		if t.opts.Units && cols[i].unit != "" {
			b.WriteByte(' ')
			b.WriteString(cols[i].unit)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(t.writer, b.String())
	return err
}

func (t *TextWriter) pair(c column, v string) string {
	if t.opts.Units && c.unit != "" {
		return fmt.Sprintf("%s = %s %s", c.name, v, c.unit)
	}
	return fmt.Sprintf("%s = %s", c.name, v)
}

func (t *TextWriter) Close() error {
	return t.writer.Close()
}
