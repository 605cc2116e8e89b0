package dataset

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/pkg/storage"
	"github.com/brimdata/thermo/service/srverr"
	"github.com/brimdata/thermo/table"
)

//go:embed steam.yaml
var steamYAML []byte

const DefaultSource = "embedded:steam.yaml"

type Format string

const (
	Auto    Format = "auto"
	Arrows  Format = "arrows"
	CSV     Format = "csv"
	Parquet Format = "parquet"
	XLSX    Format = "xlsx"
	YAML    Format = "yaml"
)

var formats = []Format{Auto, Arrows, CSV, Parquet, XLSX, YAML}

func (f Format) String() string {
	if f == "" {
		return string(Auto)
	}
	return string(f)
}

// Set implements flag.Value.
func (f *Format) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, format := range formats {
		if string(format) == s {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Detect infers the format of a single-file dataset from its extension.
// Directory formats have no extension to go by and must be named.
func Detect(u *storage.URI) (Format, error) {
	switch u.Ext() {
	case ".xlsx":
		return XLSX, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: cannot infer format from extension %q (use one of arrows, csv, parquet, xlsx, yaml)", ErrUnknownFormat, u.Ext())
}

// source yields the grid for each sheet of a dataset.
type source interface {
	sheet(ctx context.Context, name string) (*grid, error)
	Close() error
}

// Load reads the tables of every mode from u.  Either every table loads and
// validates or Load returns the first *LoadError encountered.
func Load(ctx context.Context, engine storage.Engine, u *storage.URI, format Format) (*Dataset, error) {
	if format == "" || format == Auto {
		var err error
		if format, err = Detect(u); err != nil {
			return nil, &LoadError{Source: u.String(), Err: err}
		}
	}
	src, err := open(ctx, engine, u, format)
	if err != nil {
		return nil, &LoadError{Source: u.String(), Err: err}
	}
	defer src.Close()
	return load(ctx, u.String(), src)
}

// LoadDefault returns the dataset compiled into the binary.
func LoadDefault() (*Dataset, error) {
	src, err := newYAMLSource(steamYAML)
	if err != nil {
		return nil, &LoadError{Source: DefaultSource, Err: err}
	}
	return load(context.Background(), DefaultSource, src)
}

func open(ctx context.Context, engine storage.Engine, u *storage.URI, format Format) (source, error) {
	switch format {
	case XLSX:
		return openXLSX(ctx, engine, u)
	case YAML:
		b, err := storage.Get(ctx, engine, u)
		if err != nil {
			return nil, err
		}
		return newYAMLSource(b)
	case CSV:
		return &dirSource{engine, u, ".csv", readCSV}, nil
	case Parquet:
		return &dirSource{engine, u, ".parquet", readParquet}, nil
	case Arrows:
		return &dirSource{engine, u, ".arrows", readArrows}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func load(ctx context.Context, name string, src source) (*Dataset, error) {
	tables := make(map[string]*table.Table)
	for _, m := range mode.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := src.sheet(ctx, m.Table)
		if err != nil {
			return nil, &LoadError{Source: name, Sheet: m.Table, Err: err}
		}
		t, err := buildTable(g, m)
		if err != nil {
			lerr := err.(*LoadError)
			lerr.Source = name
			lerr.Sheet = m.Table
			return nil, lerr
		}
		tables[m.Table] = t
	}
	return New(name, tables)
}

// dirSource reads a directory holding one file per sheet named
// <sheet><ext>.
type dirSource struct {
	engine storage.Engine
	dir    *storage.URI
	ext    string
	decode func(storage.Reader) (*grid, error)
}

func (d *dirSource) sheet(ctx context.Context, name string) (*grid, error) {
	u := d.dir.AppendPath(name + d.ext)
	ok, err := d.engine.Exists(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSheet, u)
	}
	r, err := d.engine.Get(ctx, u)
	if err != nil {
		if srverr.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSheet, u)
		}
		return nil, err
	}
	defer r.Close()
	return d.decode(r)
}

func (*dirSource) Close() error {
	return nil
}
