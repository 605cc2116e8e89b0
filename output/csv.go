package output

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/brimdata/thermo/query"
)

var ErrNotUniform = errors.New("csv output requires results with the same columns")

type CSVWriter struct {
	writer  io.WriteCloser
	encoder *csv.Writer
	opts    WriterOpts
	cols    []column
}

func NewCSVWriter(w io.WriteCloser, opts WriterOpts) *CSVWriter {
	return &CSVWriter{
		writer:  w,
		encoder: csv.NewWriter(w),
		opts:    opts,
	}
}

func (c *CSVWriter) Write(res *query.Result) error {
	cols := columns(res)
	if c.cols == nil {
		c.cols = cols
		hdr := make([]string, 0, len(cols))
		for _, col := range cols {
			hdr = append(hdr, col.header(c.opts.Units))
		}
		if err := c.encoder.Write(hdr); err != nil {
			return err
		}
	} else if !sameColumns(cols, c.cols) {
		return ErrNotUniform
	}
	return c.encoder.Write(values(res, c.opts.Precision))
}

func (c *CSVWriter) Close() error {
	c.encoder.Flush()
	err := c.encoder.Error()
	if closeErr := c.writer.Close(); err == nil {
		err = closeErr
	}
	return err
}
