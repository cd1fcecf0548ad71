package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

func TestMeltOrdering(t *testing.T) {
	tbl := &Table{
		Name:       "gender",
		Years:      []int{2019, 2020},
		Dimensions: []Dimension{dim("group", "all", "all")},
		Columns:    []Column{col("men_num", 300, 310), col("women_num", 100, missing), col("total_num", 400, 410)},
	}

	ls, err := Melt(tbl, []string{"total_num", "men_num"}, []string{"group"})
	require.NoError(t, err)

	assert.Equal(t, []string{"group"}, ls.IDNames)
	assert.Equal(t, []string{"total_num", "men_num"}, ls.Categories)
	require.Len(t, ls.Rows, 4)
	assert.Equal(t, models.TidyRow{Year: 2019, IDs: []string{"all"}, Category: "total_num", Value: models.Some(400)}, ls.Rows[0])
	assert.Equal(t, models.TidyRow{Year: 2019, IDs: []string{"all"}, Category: "men_num", Value: models.Some(300)}, ls.Rows[1])
	assert.Equal(t, 2020, ls.Rows[2].Year)
	assert.False(t, ls.NoData)

	_, err = Melt(tbl, []string{"nope"}, nil)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestMeltKeepsUndefined(t *testing.T) {
	tbl := &Table{Name: "t", Years: []int{2020}, Columns: []Column{col("a", missing)}}

	ls, err := Melt(tbl, []string{"a"}, nil)
	require.NoError(t, err)
	require.Len(t, ls.Rows, 1, "undefined cells are emitted, not dropped")
	assert.False(t, ls.Rows[0].Value.Valid)
}

func TestMeltWidenRoundTrip(t *testing.T) {
	tbl := &Table{
		Years:      []int{2018, 2018, 2019},
		Dimensions: []Dimension{dim("source", "Completed Suicides", "Suicide Attempts", "Completed Suicides")},
		Columns:    []Column{col("Ethiopia", 0.2, 0.1, missing), col("USSR", 0.6, 0.7, 0.5)},
	}

	ls, err := Melt(tbl, tbl.ColumnNames(), []string{"source"})
	require.NoError(t, err)
	back, err := Widen(ls)
	require.NoError(t, err)

	assert.Equal(t, tbl.Years, back.Years)
	assert.Equal(t, tbl.Dimensions, back.Dimensions)
	assert.Equal(t, tbl.ColumnNames(), back.ColumnNames())
	for c := range tbl.Columns {
		assert.Equal(t, tbl.Columns[c].Values, back.Columns[c].Values)
	}
}

func TestWidenRejectsUndeclared(t *testing.T) {
	ls := models.LongSeries{
		Categories: []string{"a"},
		Rows:       []models.TidyRow{{Year: 2020, Category: "b", Value: models.Some(1)}},
	}
	_, err := Widen(ls)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestSelectCategories(t *testing.T) {
	tbl := &Table{Name: "t", Years: []int{2020, 2021}, Columns: []Column{col("a", 1, 2), col("b", 3, 4), col("c", 5, 6)}}
	ls, err := Melt(tbl, tbl.ColumnNames(), nil)
	require.NoError(t, err)

	out := SelectCategories(ls, []string{"c", "a"})
	assert.Equal(t, []string{"a", "c"}, out.Categories, "declared order is kept")
	require.Len(t, out.Rows, 4)
	assert.Equal(t, "a", out.Rows[0].Category)
	assert.Equal(t, "c", out.Rows[1].Category)

	none := SelectCategories(ls, []string{"z"})
	assert.True(t, none.NoData)
}

func TestPivot(t *testing.T) {
	tbl := &Table{
		Name:       "ethnic",
		Years:      []int{2020, 2019, 2019, 2020},
		Dimensions: []Dimension{dim("label", "Jews - men", "Arabs - men", "Jews - men", "Arabs - women")},
		Columns:    []Column{col("total", 300, 40, 290, 8)},
	}

	out, err := Pivot(tbl, "label", "total", []string{"Arabs - women", "Jews - men", "Arabs - men"})
	require.NoError(t, err)

	assert.Equal(t, []int{2019, 2020}, out.Years)
	assert.Equal(t, []string{"Arabs - women", "Jews - men", "Arabs - men"}, out.ColumnNames())
	assert.Equal(t, []bool{false, true}, validity(out.Columns[0].Values))
	assert.Equal(t, []float64{290, 300}, floats(out.Columns[1].Values))

	dup := &Table{Name: "dup", Years: []int{2019, 2019}, Dimensions: []Dimension{dim("label", "x", "x")}, Columns: []Column{col("total", 1, 2)}}
	_, err = Pivot(dup, "label", "total", nil)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestCombineLabels(t *testing.T) {
	tbl := &Table{
		Name:       "ethnic",
		Years:      []int{2020},
		Dimensions: []Dimension{dim("ethnicity", "Arabs"), dim("group", "women")},
		Columns:    []Column{col("total", 8)},
	}
	out, err := CombineLabels(tbl, "label", " - ", "ethnicity", "group")
	require.NoError(t, err)

	labels, err := out.Dimension("label")
	require.NoError(t, err)
	assert.Equal(t, []string{"Arabs - women"}, labels)
	assert.Len(t, tbl.Dimensions, 2)
}
