package dataset

import (
	"fmt"
	"io"
	"strconv"

	"github.com/brimdata/thermo/pkg/storage"
	goparquet "github.com/fraugster/parquet-go"
)

func readParquet(r storage.Reader) (*grid, error) {
	rs, err := storage.NewSeeker(r)
	if err != nil {
		return nil, err
	}
	fr, err := goparquet.NewFileReader(rs)
	if err != nil {
		return nil, err
	}
	g := &grid{}
	for _, c := range fr.GetSchemaDefinition().RootColumn.Children {
		g.header = append(g.header, c.SchemaElement.Name)
	}
	for {
		data, err := fr.NextRow()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, err
		}
		row := make([]string, len(g.header))
		for i, name := range g.header {
			row[i] = parquetCell(data[name])
		}
		g.rows = append(g.rows, row)
	}
}

func parquetCell(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case []byte:
		return string(v)
	}
	return fmt.Sprintf("%v", v)
}
