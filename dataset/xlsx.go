package dataset

import (
	"bytes"
	"context"

	"github.com/brimdata/thermo/pkg/storage"
	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/slices"
)

// xlsxSource reads a workbook with one worksheet per sheet, the first row
// of each being its header.
type xlsxSource struct {
	file *excelize.File
}

func openXLSX(ctx context.Context, engine storage.Engine, u *storage.URI) (*xlsxSource, error) {
	b, err := storage.Get(ctx, engine, u)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return &xlsxSource{file: f}, nil
}

func (x *xlsxSource) sheet(_ context.Context, name string) (*grid, error) {
	if !slices.Contains(x.file.GetSheetList(), name) {
		return nil, ErrMissingSheet
	}
	// Raw values so that cell number formats do not round what we read.
	rows, err := x.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &grid{}, nil
	}
	return &grid{header: rows[0], rows: rows[1:]}, nil
}

func (x *xlsxSource) Close() error {
	return x.file.Close()
}
