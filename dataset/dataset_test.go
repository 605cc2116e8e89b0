package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/pkg/storage"
	"github.com/brimdata/thermo/pkg/storage/mock"
	"github.com/brimdata/thermo/service/srverr"
	"github.com/brimdata/thermo/table"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMode(t *testing.T, name string) *mode.Mode {
	m, err := mode.Lookup(name)
	require.NoError(t, err)
	return m
}

func defaultDataset(t *testing.T) *Dataset {
	ds, err := LoadDefault()
	require.NoError(t, err)
	return ds
}

// records renders a table as a header and rows of text.
func records(tbl *table.Table) [][]string {
	cols := tbl.Columns()
	recs := [][]string{cols}
	for i := 0; i < tbl.Len(); i++ {
		row := tbl.Row(i)
		rec := make([]string, len(cols))
		for k, c := range cols {
			rec[k] = strconv.FormatFloat(row[c], 'g', -1, 64)
		}
		recs = append(recs, rec)
	}
	return recs
}

func encodeCSV(t *testing.T, recs [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(recs))
	return buf.Bytes()
}

// writeCSVDir writes the default dataset as a csv directory and returns it.
func writeCSVDir(t *testing.T) string {
	dir := t.TempDir()
	ds := defaultDataset(t)
	for _, sheet := range Sheets {
		b := encodeCSV(t, records(ds.Table(sheet)))
		require.NoError(t, os.WriteFile(filepath.Join(dir, sheet+".csv"), b, 0644))
	}
	return dir
}

func loadCSVDir(t *testing.T, dir string) (*Dataset, error) {
	u, err := storage.ParseURI(dir)
	require.NoError(t, err)
	return Load(context.Background(), storage.NewLocalEngine(), u, CSV)
}

func mockEngine(t *testing.T, files map[string][]byte) *mock.MockEngine {
	engine := mock.NewMockEngine(gomock.NewController(t))
	engine.EXPECT().Exists(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *storage.URI) (bool, error) {
			_, ok := files[u.Base()]
			return ok, nil
		}).AnyTimes()
	engine.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *storage.URI) (storage.Reader, error) {
			b, ok := files[u.Base()]
			if !ok {
				return nil, srverr.ErrNotFound("%s", u)
			}
			return storage.NewBytesReader(b), nil
		}).AnyTimes()
	return engine
}

func assertSameAnswers(t *testing.T, want, got *Dataset) {
	for _, name := range []string{mode.SatByTemperature, mode.SatByPressure} {
		m := lookupMode(t, name)
		wx, err := want.Index(m)
		require.NoError(t, err)
		gx, err := got.Index(m)
		require.NoError(t, err)
		for _, v := range []float64{wx.Min(), (wx.Min() + wx.Max()) / 3, wx.Max()} {
			wr, err := wx.Lookup(v, m.Outputs)
			require.NoError(t, err)
			gr, err := gx.Lookup(v, m.Outputs)
			require.NoError(t, err)
			assert.Equal(t, wr, gr, "%s at %v", name, v)
		}
	}
	sh := lookupMode(t, mode.SuperheatedVapor)
	assert.Equal(t, want.Choices(sh), got.Choices(sh))
	wx, err := want.Slice(sh, 1.0)
	require.NoError(t, err)
	gx, err := got.Slice(sh, 1.0)
	require.NoError(t, err)
	wr, err := wx.Lookup(225, sh.Outputs)
	require.NoError(t, err)
	gr, err := gx.Lookup(225, sh.Outputs)
	require.NoError(t, err)
	assert.Equal(t, wr, gr)
}

func TestLoadDefault(t *testing.T) {
	ds := defaultDataset(t)
	assert.Equal(t, DefaultSource, ds.Source())

	satT := lookupMode(t, mode.SatByTemperature)
	x, err := ds.Index(satT)
	require.NoError(t, err)
	res, err := x.Lookup(125, []string{"P"})
	require.NoError(t, err)
	assert.False(t, res.Exact)
	assert.Equal(t, 120.0, res.Lower)
	assert.Equal(t, 130.0, res.Upper)
	assert.InDelta(t, 234.315, res.Values["P"], 1e-9)

	sh := lookupMode(t, mode.SuperheatedVapor)
	assert.Equal(t, []float64{0.01, 0.1, 0.5, 1.0}, ds.Choices(sh))
	slice, err := ds.Slice(sh, 1.0)
	require.NoError(t, err)
	res, err = slice.Lookup(200, []string{"h"})
	require.NoError(t, err)
	assert.True(t, res.Exact)
	assert.Equal(t, 2827.9, res.Values["h"])

	min, max, err := ds.Range(sh)
	require.NoError(t, err)
	assert.Equal(t, 50.0, min)
	assert.Equal(t, 300.0, max)
}

func TestSaturatedTablesAgree(t *testing.T) {
	ds := defaultDataset(t)
	satP := lookupMode(t, mode.SatByPressure)
	x, err := ds.Index(satP)
	require.NoError(t, err)
	res, err := x.Lookup(100, []string{"T", "h_fg"})
	require.NoError(t, err)
	assert.True(t, res.Exact)
	assert.Equal(t, 99.63, res.Values["T"])
	assert.Equal(t, 2258.0, res.Values["h_fg"])
}

func TestDatasetModeErrors(t *testing.T) {
	ds := defaultDataset(t)
	sh := lookupMode(t, mode.SuperheatedVapor)
	_, err := ds.Index(sh)
	assert.ErrorIs(t, err, ErrNeedsFilter)
	_, err = ds.Slice(sh, 0.75)
	assert.ErrorIs(t, err, table.ErrEmptyTable)
	assert.Contains(t, err.Error(), "choices are 0.01, 0.1, 0.5, 1")
	_, err = ds.Slice(lookupMode(t, mode.SatByTemperature), 1.0)
	assert.ErrorIs(t, err, ErrNoFilter)
	assert.Nil(t, ds.Choices(lookupMode(t, mode.SatByPressure)))
}

func TestChoicesIsACopy(t *testing.T) {
	ds := defaultDataset(t)
	sh := lookupMode(t, mode.SuperheatedVapor)
	ds.Choices(sh)[0] = 42
	assert.Equal(t, 0.01, ds.Choices(sh)[0])
}

func TestLoadCSVDirectory(t *testing.T) {
	ds, err := loadCSVDir(t, writeCSVDir(t))
	require.NoError(t, err)
	assertSameAnswers(t, defaultDataset(t), ds)
}

func TestLoadMissingSheet(t *testing.T) {
	dir := writeCSVDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, mode.SuperheatedTable+".csv")))
	_, err := loadCSVDir(t, dir)
	require.ErrorIs(t, err, ErrMissingSheet)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, mode.SuperheatedTable, lerr.Sheet)
}

func TestLoadEmptySheet(t *testing.T) {
	dir := writeCSVDir(t)
	recs := records(defaultDataset(t).Table(mode.SatWaterTable))
	writeSheet(t, dir, mode.SatWaterTable, recs[:1])
	_, err := loadCSVDir(t, dir)
	require.ErrorIs(t, err, ErrEmptySheet)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, mode.SatWaterTable, lerr.Sheet)
}

func TestNewRejectsEmptyTable(t *testing.T) {
	def := defaultDataset(t)
	tables := make(map[string]*table.Table)
	for _, sheet := range Sheets {
		tables[sheet] = def.Table(sheet)
	}
	empty, err := table.New(def.Table(mode.SuperheatedTable).Columns(), nil)
	require.NoError(t, err)
	tables[mode.SuperheatedTable] = empty
	_, err = New("memory", tables)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func writeSheet(t *testing.T, dir, sheet string, recs [][]string) {
	b := encodeCSV(t, recs)
	require.NoError(t, os.WriteFile(filepath.Join(dir, sheet+".csv"), b, 0644))
}

func TestLoadNonNumericCell(t *testing.T) {
	dir := writeCSVDir(t)
	recs := records(defaultDataset(t).Table(mode.SatWaterTable))
	recs[2][1] = "abc"
	writeSheet(t, dir, mode.SatWaterTable, recs)
	_, err := loadCSVDir(t, dir)
	require.ErrorIs(t, err, ErrNotNumeric)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, mode.SatWaterTable, lerr.Sheet)
	assert.Equal(t, "P", lerr.Column)
	assert.Equal(t, 3, lerr.Row)
	assert.Contains(t, err.Error(), `row 3 column "P"`)
}

func TestLoadEmptyCell(t *testing.T) {
	dir := writeCSVDir(t)
	recs := records(defaultDataset(t).Table(mode.SuperheatedTable))
	recs[1][3] = " "
	writeSheet(t, dir, mode.SuperheatedTable, recs)
	_, err := loadCSVDir(t, dir)
	assert.ErrorIs(t, err, ErrEmptyCell)
}

func TestLoadMissingColumn(t *testing.T) {
	dir := writeCSVDir(t)
	recs := records(defaultDataset(t).Table(mode.SatWaterPressTable))
	for i := range recs {
		recs[i] = recs[i][:len(recs[i])-1]
	}
	writeSheet(t, dir, mode.SatWaterPressTable, recs)
	_, err := loadCSVDir(t, dir)
	require.ErrorIs(t, err, ErrMissingColumn)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "s_g", lerr.Column)
}

func TestLoadDuplicateKeyInSlice(t *testing.T) {
	dir := writeCSVDir(t)
	recs := records(defaultDataset(t).Table(mode.SuperheatedTable))
	// P = 1.0 and T = 200 again with different properties.
	recs = append(recs, []string{"200", "1", "0.2", "2620", "2830", "6.7"})
	writeSheet(t, dir, mode.SuperheatedTable, recs)
	_, err := loadCSVDir(t, dir)
	require.ErrorIs(t, err, table.ErrDuplicateKey)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "T", lerr.Column)
	assert.Contains(t, err.Error(), "P = 1")
}

func TestLoadSkipsBlankRowsAndExtraColumns(t *testing.T) {
	dir := writeCSVDir(t)
	recs := records(defaultDataset(t).Table(mode.SuperheatedTable))
	for i := range recs {
		recs[i] = append(recs[i], "note")
	}
	recs[0][len(recs[0])-1] = "comment"
	recs = append(recs, make([]string, len(recs[0])))
	writeSheet(t, dir, mode.SuperheatedTable, recs)
	ds, err := loadCSVDir(t, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"T", "P", "v", "u", "h", "s"}, ds.Table(mode.SuperheatedTable).Columns())
	assertSameAnswers(t, defaultDataset(t), ds)
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u, err := storage.ParseURI(writeCSVDir(t))
	require.NoError(t, err)
	_, err = Load(ctx, storage.NewLocalEngine(), u, CSV)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadYAMLFromObjectStore(t *testing.T) {
	engine := mockEngine(t, map[string][]byte{"steam.yml": steamYAML})
	ds, err := Load(context.Background(), engine, storage.MustParseURI("s3://bucket/data/steam.yml"), Auto)
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/data/steam.yml", ds.Source())
	assertSameAnswers(t, defaultDataset(t), ds)
}

func TestLoadYAMLErrors(t *testing.T) {
	_, err := newYAMLSource([]byte("sheets: [not, a, map]"))
	assert.Error(t, err)

	src, err := newYAMLSource([]byte(`
sheets:
  B1.1-Satd.Water:
    columns: [T, P]
    rows:
      - [1, [2]]
`))
	require.NoError(t, err)
	_, err = load(context.Background(), "inline", src)
	assert.ErrorIs(t, err, ErrMissingColumn)

	g, err := src.sheet(context.Background(), mode.SatWaterTable)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "[...]"}}, g.rows)
	_, err = src.sheet(context.Background(), mode.SuperheatedTable)
	assert.ErrorIs(t, err, ErrMissingSheet)
}

func TestLoadThroughMissingObject(t *testing.T) {
	engine := mockEngine(t, map[string][]byte{})
	_, err := Load(context.Background(), engine, storage.MustParseURI("s3://bucket/data"), Parquet)
	require.ErrorIs(t, err, ErrMissingSheet)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, mode.SatWaterTable, lerr.Sheet)
}

func TestFormat(t *testing.T) {
	var f Format
	assert.Equal(t, "auto", f.String())
	require.NoError(t, f.Set(" Parquet "))
	assert.Equal(t, Parquet, f)
	assert.ErrorIs(t, f.Set("xls"), ErrUnknownFormat)

	for path, want := range map[string]Format{
		"/data/steam.xlsx": XLSX,
		"/data/steam.YAML": YAML,
		"/data/steam.yml":  YAML,
	} {
		got, err := Detect(storage.MustParseURI(path))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := Detect(storage.MustParseURI("/data/steam"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadUndetectedFormat(t *testing.T) {
	u := storage.MustParseURI("/data/steam.txt")
	_, err := Load(context.Background(), storage.NewLocalEngine(), u, Auto)
	require.ErrorIs(t, err, ErrUnknownFormat)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, u.String(), lerr.Source)
}
