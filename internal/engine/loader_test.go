package engine

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

func TestLoadTable(t *testing.T) {
	csvContent := "\xEF\xBB\xBFYear,group,<14,15-17,18-21\n" +
		"2019,all,5,40,'61'\n" +
		"2018,all,4,\"1,024\",\n" +
		"n/a,all,1,1,1\n" +
		"2018.0,men,3,25,30\n" +
		"2017.5,all,9,9,9\n"

	fsys := fstest.MapFS{"age.csv": {Data: []byte(csvContent)}}
	src := Source{Name: "age", Path: "age.csv", Dimensions: []string{"group"}}

	// 1. Run Loader
	tbl, err := LoadTable(context.Background(), fsys, src)
	require.NoError(t, err)

	// 2. Assertions
	// Non-numeric and fractional years are dropped; rows sorted by year, stable.
	assert.Equal(t, []int{2018, 2018, 2019}, tbl.Years)
	groups, err := tbl.Dimension("group")
	require.NoError(t, err)
	assert.Equal(t, []string{"all", "men", "all"}, groups)
	assert.Equal(t, []string{"<14", "15-17", "18-21"}, tbl.ColumnNames())

	c1517, err := tbl.Column("15-17")
	require.NoError(t, err)
	assert.Equal(t, []float64{1024, 25, 40}, floats(c1517))

	c1821, err := tbl.Column("18-21")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, validity(c1821), "empty cell is undefined, not zero")
	assert.Equal(t, 61.0, c1821[2].Float, "apostrophe-quoted count is parsed")
}

func TestLoadTableDropsOutOfRangeYears(t *testing.T) {
	fsys := fstest.MapFS{"t.csv": {Data: []byte("year,total\n1e300,5\n2020,4\n-3,1\n")}}

	tbl, err := LoadTable(context.Background(), fsys, Source{Name: "t", Path: "t.csv"})
	require.NoError(t, err)
	assert.Equal(t, []int{2020}, tbl.Years)
	assert.Equal(t, []int{2020}, tbl.ObservedYears())
}

func TestLoadTableLowerColumns(t *testing.T) {
	fsys := fstest.MapFS{"m.csv": {Data: []byte("year,Jan,FEB\n2020,1,2\n")}}

	tbl, err := LoadTable(context.Background(), fsys, Source{Name: "m", Path: "m.csv", LowerColumns: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"jan", "feb"}, tbl.ColumnNames())
}

func TestLoadTableFailures(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		dims []string
	}{
		{name: "no year column", csv: "when,total\n2020,1\n"},
		{name: "missing dimension", csv: "year,total\n2020,1\n", dims: []string{"group"}},
		{name: "duplicate key", csv: "year,group,total\n2020,all,1\n2020,all,2\n", dims: []string{"group"}},
		{name: "negative count", csv: "year,total\n2020,-4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"t.csv": {Data: []byte(tt.csv)}}
			_, err := LoadTable(context.Background(), fsys, Source{Name: "t", Path: "t.csv", Dimensions: tt.dims})
			assert.ErrorIs(t, err, ErrSourceLoad)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTable(context.Background(), fstest.MapFS{}, Source{Name: "t", Path: "nope.csv"})
		assert.ErrorIs(t, err, ErrSourceLoad)
	})
}

func TestLoadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"year", "ethnicity", "group", "total"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{2021, "Arabs", "men", 30}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{2020, "Arabs", "men", 28}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	fsys := fstest.MapFS{"ethnic.xlsx": {Data: buf.Bytes()}}
	tbl, err := LoadTable(context.Background(), fsys, Source{
		Name: "ethnic", Path: "ethnic.xlsx", Dimensions: []string{"ethnicity", "group"},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2020, 2021}, tbl.Years)
	total, err := tbl.Column("total")
	require.NoError(t, err)
	assert.Equal(t, []float64{28, 30}, floats(total))
}

func TestCellParsers(t *testing.T) {
	y, ok := parseYear("2023")
	assert.True(t, ok)
	assert.Equal(t, 2023, y)

	y, ok = parseYear(" 2019.0 ")
	assert.True(t, ok)
	assert.Equal(t, 2019, y)

	_, ok = parseYear("20x9")
	assert.False(t, ok)

	for _, cell := range []string{"1e300", "-2020", "0", "99999", "1e5", "9223372036854775807"} {
		_, ok = parseYear(cell)
		assert.False(t, ok, "year %q is out of range", cell)
	}

	assert.Equal(t, models.Some(123.45), parseCount("123.45"))
	assert.Equal(t, models.Some(1024), parseCount(" '1,024' "))
	assert.False(t, parseCount("").Valid)
	assert.False(t, parseCount("-").Valid)
}
