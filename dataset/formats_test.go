package dataset

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/ipc"
	"github.com/apache/arrow/go/v11/arrow/memory"
	"github.com/brimdata/thermo/pkg/storage"
	"github.com/brimdata/thermo/table"
	goparquet "github.com/fraugster/parquet-go"
	"github.com/fraugster/parquet-go/parquetschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func encodeArrows(t *testing.T, tbl *table.Table) []byte {
	var fields []arrow.Field
	for _, c := range tbl.Columns() {
		fields = append(fields, arrow.Field{Name: c, Type: arrow.PrimitiveTypes.Float64})
	}
	schema := arrow.NewSchema(fields, nil)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	for i := 0; i < tbl.Len(); i++ {
		row := tbl.Row(i)
		for k, c := range tbl.Columns() {
			b.Field(k).(*array.Float64Builder).Append(row[c])
		}
	}
	rec := b.NewRecord()
	defer rec.Release()
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func encodeParquet(t *testing.T, tbl *table.Table) []byte {
	var fields []string
	for _, c := range tbl.Columns() {
		fields = append(fields, fmt.Sprintf("required double %s;", c))
	}
	sd, err := parquetschema.ParseSchemaDefinition("message sheet {\n" + strings.Join(fields, "\n") + "\n}")
	require.NoError(t, err)
	var buf bytes.Buffer
	fw := goparquet.NewFileWriter(&buf, goparquet.WithSchemaDefinition(sd))
	for i := 0; i < tbl.Len(); i++ {
		data := make(map[string]interface{})
		for c, v := range tbl.Row(i) {
			data[c] = v
		}
		require.NoError(t, fw.AddData(data))
	}
	require.NoError(t, fw.Close())
	return buf.Bytes()
}

func encodeXLSX(t *testing.T, ds *Dataset) []byte {
	f := excelize.NewFile()
	for _, sheet := range Sheets {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for r, rec := range records(ds.Table(sheet)) {
			cells := make([]interface{}, len(rec))
			for i, s := range rec {
				cells[i] = s
			}
			if r > 0 {
				// Numbers as numbers, not text.
				tbl := ds.Table(sheet)
				row := tbl.Row(r - 1)
				for i, c := range tbl.Columns() {
					cells[i] = row[c]
				}
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoadArrows(t *testing.T) {
	want := defaultDataset(t)
	files := make(map[string][]byte)
	for _, sheet := range Sheets {
		files[sheet+".arrows"] = encodeArrows(t, want.Table(sheet))
	}
	ds, err := Load(context.Background(), mockEngine(t, files), storage.MustParseURI("https://example.com/steam"), Arrows)
	require.NoError(t, err)
	assertSameAnswers(t, want, ds)
}

func TestLoadParquet(t *testing.T) {
	want := defaultDataset(t)
	files := make(map[string][]byte)
	for _, sheet := range Sheets {
		files[sheet+".parquet"] = encodeParquet(t, want.Table(sheet))
	}
	ds, err := Load(context.Background(), mockEngine(t, files), storage.MustParseURI("s3://bucket/steam"), Parquet)
	require.NoError(t, err)
	assertSameAnswers(t, want, ds)
}

func TestLoadXLSX(t *testing.T) {
	want := defaultDataset(t)
	files := map[string][]byte{"steam.xlsx": encodeXLSX(t, want)}
	ds, err := Load(context.Background(), mockEngine(t, files), storage.MustParseURI("s3://bucket/steam.xlsx"), Auto)
	require.NoError(t, err)
	assertSameAnswers(t, want, ds)
}

func TestArrowCellNulls(t *testing.T) {
	b := array.NewFloat64Builder(memory.NewGoAllocator())
	defer b.Release()
	b.AppendValues([]float64{1.5, 0}, []bool{true, false})
	arr := b.NewFloat64Array()
	defer arr.Release()
	assert.Equal(t, "1.5", arrowCell(arr, 0))
	assert.Equal(t, "", arrowCell(arr, 1))
}

func TestParquetCell(t *testing.T) {
	assert.Equal(t, "", parquetCell(nil))
	assert.Equal(t, "0.1", parquetCell(float32(0.1)))
	assert.Equal(t, "42", parquetCell(int64(42)))
	assert.Equal(t, "abc", parquetCell([]byte("abc")))
}
