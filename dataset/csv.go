package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/brimdata/thermo/pkg/storage"
)

const bom = "\ufeff"

func readCSV(r storage.Reader) (*grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &grid{}, nil
		}
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	g := &grid{header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, err
		}
		g.rows = append(g.rows, rec)
	}
}
