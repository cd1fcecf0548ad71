package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// Melt converts t to long form. For each row of t (in original order) it
// emits one tidy row per category, in the order of categories. ids names the
// dimension columns copied into TidyRow.IDs; year is always carried.
func Melt(t *Table, categories, ids []string) (models.LongSeries, error) {
	cols := make([][]models.Value, len(categories))
	for i, c := range categories {
		vals, err := t.Column(c)
		if err != nil {
			return models.LongSeries{}, err
		}
		cols[i] = vals
	}
	dims := make([][]string, len(ids))
	for i, d := range ids {
		labels, err := t.Dimension(d)
		if err != nil {
			return models.LongSeries{}, err
		}
		dims[i] = labels
	}

	ls := models.LongSeries{
		IDNames:    slices.Clone(ids),
		Categories: slices.Clone(categories),
		Rows:       make([]models.TidyRow, 0, t.Len()*len(categories)),
		NoData:     t.Empty(),
	}
	for r, y := range t.Years {
		var idv []string
		if len(dims) > 0 {
			idv = make([]string, len(dims))
			for d := range dims {
				idv[d] = dims[d][r]
			}
		}
		for c, name := range categories {
			ls.Rows = append(ls.Rows, models.TidyRow{
				Year:     y,
				IDs:      slices.Clone(idv),
				Category: name,
				Value:    cols[c][r],
			})
		}
	}
	return ls, nil
}

// Widen is the inverse of Melt: one row per distinct (year, ids) key in first
// appearance order, one column per category in ls.Categories order. Keys or
// categories missing from ls yield undefined cells.
func Widen(ls models.LongSeries) (*Table, error) {
	t := &Table{}
	for _, n := range ls.IDNames {
		t.Dimensions = append(t.Dimensions, Dimension{Name: n})
	}
	colIdx := make(map[string]int, len(ls.Categories))
	for i, c := range ls.Categories {
		colIdx[c] = i
		t.Columns = append(t.Columns, Column{Name: c})
	}

	rowIdx := make(map[string]int)
	for _, r := range ls.Rows {
		if len(r.IDs) != len(ls.IDNames) {
			return nil, fmt.Errorf("%w: row for %d has %d ids, want %d", ErrSchemaMismatch, r.Year, len(r.IDs), len(ls.IDNames))
		}
		c, ok := colIdx[r.Category]
		if !ok {
			return nil, fmt.Errorf("%w: undeclared category %q", ErrSchemaMismatch, r.Category)
		}
		key := fmt.Sprintf("%d\x00%s", r.Year, strings.Join(r.IDs, "\x00"))
		i, ok := rowIdx[key]
		if !ok {
			i = len(t.Years)
			rowIdx[key] = i
			t.Years = append(t.Years, r.Year)
			for d := range t.Dimensions {
				t.Dimensions[d].Labels = append(t.Dimensions[d].Labels, r.IDs[d])
			}
			for k := range t.Columns {
				t.Columns[k].Values = append(t.Columns[k].Values, models.None())
			}
		}
		t.Columns[c].Values[i] = r.Value
	}
	return t, nil
}

// SelectCategories keeps the rows whose category is in keep, and narrows the
// declared order accordingly. The original relative order is preserved.
func SelectCategories(ls models.LongSeries, keep []string) models.LongSeries {
	out := models.LongSeries{IDNames: slices.Clone(ls.IDNames)}
	for _, c := range ls.Categories {
		if slices.Contains(keep, c) {
			out.Categories = append(out.Categories, c)
		}
	}
	out.Rows = make([]models.TidyRow, 0, len(ls.Rows))
	for _, r := range ls.Rows {
		if slices.Contains(keep, r.Category) {
			out.Rows = append(out.Rows, r)
		}
	}
	out.NoData = len(out.Rows) == 0
	return out
}

// CombineLabels builds a new dimension named name from the given dimensions
// joined with sep (e.g. "Arabs - men"). Source dimensions are kept.
func CombineLabels(t *Table, name, sep string, dims ...string) (*Table, error) {
	parts := make([][]string, len(dims))
	for i, d := range dims {
		labels, err := t.Dimension(d)
		if err != nil {
			return nil, err
		}
		parts[i] = labels
	}
	out := t.Clone()
	combined := make([]string, t.Len())
	for r := range combined {
		vals := make([]string, len(parts))
		for i := range parts {
			vals[i] = parts[i][r]
		}
		combined[r] = strings.Join(vals, sep)
	}
	out.Dimensions = append(out.Dimensions, Dimension{Name: name, Labels: combined})
	return out, nil
}

// Pivot spreads dimension dim into columns holding col: one row per year
// (ascending), one column per label. Labels listed in order come first in
// that order; others follow in first appearance order. A (year, label) pair
// occurring twice is ErrSchemaMismatch. Missing pairs are undefined.
func Pivot(t *Table, dim, col string, order []string) (*Table, error) {
	labels, err := t.Dimension(dim)
	if err != nil {
		return nil, err
	}
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, l := range order {
		if slices.Contains(labels, l) {
			names = append(names, l)
		}
	}
	for _, l := range labels {
		if !slices.Contains(names, l) {
			names = append(names, l)
		}
	}

	years := t.ObservedYears()
	yearRow := make(map[int]int, len(years))
	for i, y := range years {
		yearRow[y] = i
	}
	out := &Table{Name: t.Name, Years: years}
	colIdx := make(map[string]int, len(names))
	for i, n := range names {
		colIdx[n] = i
		out.Columns = append(out.Columns, Column{Name: n, Values: make([]models.Value, len(years))})
	}
	filled := make(map[[2]int]bool)
	for r, y := range t.Years {
		k := [2]int{yearRow[y], colIdx[labels[r]]}
		if filled[k] {
			return nil, fmt.Errorf("%w: %s has two %q rows for %d", ErrSchemaMismatch, t.Name, labels[r], y)
		}
		filled[k] = true
		out.Columns[k[1]].Values[k[0]] = vals[r]
	}
	return out, nil
}
