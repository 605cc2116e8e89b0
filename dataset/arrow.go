package dataset

import (
	"strconv"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/ipc"
	"github.com/brimdata/thermo/pkg/storage"
)

// readArrows reads an Arrow IPC stream.  Numeric and string columns are
// supported; a column of any other type reads as empty cells.
func readArrows(r storage.Reader) (*grid, error) {
	rdr, err := ipc.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer rdr.Release()
	g := &grid{}
	for _, f := range rdr.Schema().Fields() {
		g.header = append(g.header, f.Name)
	}
	for rdr.Next() {
		rec := rdr.Record()
		n := int(rec.NumRows())
		rows := make([][]string, n)
		for j := range rows {
			rows[j] = make([]string, len(g.header))
		}
		for i, col := range rec.Columns() {
			for j := 0; j < n; j++ {
				rows[j][i] = arrowCell(col, j)
			}
		}
		g.rows = append(g.rows, rows...)
	}
	if err := rdr.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func arrowCell(col arrow.Array, i int) string {
	if col.IsNull(i) {
		return ""
	}
	switch col := col.(type) {
	case *array.Float64:
		return formatFloat(col.Value(i), 64)
	case *array.Float32:
		return formatFloat(float64(col.Value(i)), 32)
	case *array.Int64:
		return strconv.FormatInt(col.Value(i), 10)
	case *array.Int32:
		return strconv.FormatInt(int64(col.Value(i)), 10)
	case *array.String:
		return col.Value(i)
	}
	return ""
}
