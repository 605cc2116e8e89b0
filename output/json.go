package output

import (
	"encoding/json"
	"io"

	"github.com/brimdata/thermo/query"
)

// JSONWriter writes one JSON object per result and line.
type JSONWriter struct {
	io.Closer
	encoder *json.Encoder
	opts    WriterOpts
}

type jsonProperty struct {
	Name  string      `json:"name"`
	Value json.Number `json:"value"`
	Unit  string      `json:"unit,omitempty"`
}

type jsonResult struct {
	Mode   string         `json:"mode"`
	Key    jsonProperty   `json:"key"`
	Filter *jsonProperty  `json:"filter,omitempty"`
	Exact  bool           `json:"exact"`
	Lower  json.Number    `json:"lower"`
	Upper  json.Number    `json:"upper"`
	Values []jsonProperty `json:"values"`
}

func NewJSONWriter(w io.WriteCloser, opts WriterOpts) *JSONWriter {
	return &JSONWriter{
		Closer:  w,
		encoder: json.NewEncoder(w),
		opts:    opts,
	}
}

func (j *JSONWriter) Write(res *query.Result) error {
	cols := columns(res)
	vals := values(res, j.opts.Precision)
	props := make([]jsonProperty, len(cols))
	for i, c := range cols {
		props[i] = jsonProperty{Name: c.name, Value: json.Number(vals[i])}
		if j.opts.Units {
			props[i].Unit = c.unit
		}
	}
	out := jsonResult{
		Mode:  res.Mode,
		Key:   props[0],
		Exact: res.Exact,
		Lower: json.Number(FormatValue(res.Lower, j.opts.Precision)),
		Upper: json.Number(FormatValue(res.Upper, j.opts.Precision)),
	}
	props = props[1:]
	if res.Filter != nil {
		out.Filter = &props[0]
		props = props[1:]
	}
	out.Values = props
	return j.encoder.Encode(out)
}
