// Package dataflags selects the steam table dataset a command works on.
package dataflags

import (
	"context"
	"flag"

	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/pkg/storage"
)

type Flags struct {
	Path   string
	Format dataset.Format
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.Path, "data", "", "dataset path or URL (file, http(s) or s3; default is the built-in dataset)")
	fs.Var(&f.Format, "data.format", "dataset format [auto,xlsx,yaml,csv,parquet,arrows]")
}

// Init checks the flags after they are parsed.
func (f *Flags) Init() error {
	if f.Path == "" {
		return nil
	}
	_, err := storage.ParseURI(f.Path)
	return err
}

// Open loads the selected dataset.
func (f *Flags) Open(ctx context.Context) (*dataset.Dataset, error) {
	if f.Path == "" {
		return dataset.LoadDefault()
	}
	u, err := storage.ParseURI(f.Path)
	if err != nil {
		return nil, err
	}
	return dataset.Load(ctx, storage.NewRemoteEngine(), u, f.Format)
}
