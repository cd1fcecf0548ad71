package engine

import (
	"slices"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// SourceDimension is the dimension that tags stacked rows with their origin.
const SourceDimension = "source"

// Series is one independently derived input of a comparison.
type Series struct {
	Label string
	Table *Table
}

func unionYears(series []Series) []int {
	var years []int
	for _, s := range series {
		years = append(years, s.Table.Years...)
	}
	slices.Sort(years)
	return slices.Compact(years)
}

// OuterJoin aligns column col of every series on year: one row per year in
// the union (ascending), one column per series label. A year missing from a
// series is undefined in that column, never dropped and never zero.
func OuterJoin(series []Series, col string) (*Table, error) {
	years := unionYears(series)
	out := &Table{Name: "comparison", Years: years}
	for _, s := range series {
		vals, err := s.Table.Column(col)
		if err != nil {
			return nil, err
		}
		idx, err := s.Table.yearIndex()
		if err != nil {
			return nil, err
		}
		joined := make([]models.Value, len(years))
		for k, y := range years {
			if i, ok := idx[y]; ok {
				joined[k] = vals[i]
			}
		}
		out.Columns = append(out.Columns, Column{Name: s.Label, Values: joined})
	}
	return out, nil
}

// Stack lays the series on top of each other: for each year in the union,
// one row per series (in series order) tagged with the source dimension.
// cols must exist on every series. Absent years give all-undefined rows.
func Stack(series []Series, cols []string) (*Table, error) {
	years := unionYears(series)
	indexes := make([]map[int]int, len(series))
	for i, s := range series {
		if err := RequireColumns(s.Table, cols...); err != nil {
			return nil, err
		}
		idx, err := s.Table.yearIndex()
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
	}

	n := len(years) * len(series)
	out := &Table{
		Name:       "comparison",
		Years:      make([]int, 0, n),
		Dimensions: []Dimension{{Name: SourceDimension, Labels: make([]string, 0, n)}},
	}
	for _, c := range cols {
		out.Columns = append(out.Columns, Column{Name: c, Values: make([]models.Value, 0, n)})
	}
	for _, y := range years {
		for i, s := range series {
			out.Years = append(out.Years, y)
			out.Dimensions[0].Labels = append(out.Dimensions[0].Labels, s.Label)
			r, ok := indexes[i][y]
			for k, c := range cols {
				v := models.None()
				if ok {
					vals, _ := s.Table.Column(c)
					v = vals[r]
				}
				out.Columns[k].Values = append(out.Columns[k].Values, v)
			}
		}
	}
	return out, nil
}

// CompareAverages builds long rows (category, source) -> period average for
// tables that are already column-aligned, e.g. completed vs attempted by age.
// Rows carry year 0 since the value spans the whole window.
func CompareAverages(series []Series, cols []string) (models.LongSeries, error) {
	ls := models.LongSeries{
		IDNames:    []string{SourceDimension},
		Categories: slices.Clone(cols),
	}
	empty := true
	for _, c := range cols {
		for _, s := range series {
			avg, err := PeriodAverage(s.Table, c)
			if err != nil {
				return models.LongSeries{}, err
			}
			if avg.Valid {
				empty = false
			}
			ls.Rows = append(ls.Rows, models.TidyRow{IDs: []string{s.Label}, Category: c, Value: avg})
		}
	}
	ls.NoData = empty
	return ls, nil
}
