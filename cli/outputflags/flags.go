// Package outputflags configures how query results are written.
package outputflags

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brimdata/thermo/output"
	"github.com/brimdata/thermo/pkg/fs"
	"github.com/brimdata/thermo/pkg/terminal"
	"github.com/brimdata/thermo/pkg/terminal/color"
	"golang.org/x/exp/slices"
)

type Flags struct {
	output.WriterOpts
	DefaultFormat string
	outputFile    string
	color         bool
}

func (f *Flags) Options() output.WriterOpts {
	return f.WriterOpts
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.SetFormatFlags(fs)
	fs.StringVar(&f.outputFile, "o", "", "write output to file")
}

// SetFormatFlags registers every flag but -o, for commands that always
// write to stdout.
func (f *Flags) SetFormatFlags(fs *flag.FlagSet) {
	if f.DefaultFormat == "" {
		f.DefaultFormat = "text"
	}
	fs.StringVar(&f.Format, "f", f.DefaultFormat, fmt.Sprintf("format for output [%s]", strings.Join(output.Formats, ",")))
	fs.IntVar(&f.Precision, "precision", -1, "significant digits of output values (-1 for shortest exact form)")
	fs.BoolVar(&f.Units, "units", true, "show units in output (-units=false to omit them)")
	fs.BoolVar(&f.color, "color", true, "enable/disable color formatting for text output")
}

func (f *Flags) Init() error {
	if !slices.Contains(output.Formats, f.Format) {
		return fmt.Errorf("unknown output format %q (options are %s)", f.Format, strings.Join(output.Formats, ", "))
	}
	if f.Precision == 0 || f.Precision < -1 {
		return fmt.Errorf("precision must be positive or -1: %d", f.Precision)
	}
	if f.outputFile == "" && f.color && terminal.IsTerminalFile(os.Stdout) {
		color.Enabled = true
		f.Color = true
	} else {
		color.Enabled = false
	}
	return nil
}

// Writer is an output.Writer that can be abandoned with Abort.
type Writer struct {
	output.Writer
	replacer *fs.Replacer
}

// Abort closes the writer.  With -o, the file is left as it was before
// the command ran.
func (w *Writer) Abort() {
	if w.replacer != nil {
		w.replacer.Abort()
	}
	w.Writer.Close()
}

// Open returns a writer to stdout or, with -o, to a file that replaces any
// existing one when the writer is closed.
func (f *Flags) Open() (*Writer, error) {
	var w io.WriteCloser = nopCloser{os.Stdout}
	var replacer *fs.Replacer
	if f.outputFile != "" {
		r, err := fs.NewFileReplacer(f.outputFile, 0666)
		if err != nil {
			return nil, err
		}
		w, replacer = r, r
	}
	ow, err := output.NewWriter(w, f.WriterOpts)
	if err != nil {
		if replacer != nil {
			replacer.Abort()
		}
		return nil, err
	}
	return &Writer{Writer: ow, replacer: replacer}, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
