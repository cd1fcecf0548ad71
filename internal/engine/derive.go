package engine

import (
	"slices"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// PeriodAverage is the mean of the valid cells of col. With no valid cells
// (including an empty window) the result is undefined, never zero.
func PeriodAverage(t *Table, col string) (models.Value, error) {
	vals, err := t.Column(col)
	if err != nil {
		return models.None(), err
	}
	return mean(vals), nil
}

func mean(vals []models.Value) models.Value {
	sum, n := 0.0, 0
	for _, v := range vals {
		if v.Valid {
			sum += v.Float
			n++
		}
	}
	if n == 0 {
		return models.None()
	}
	return models.Some(sum / float64(n))
}

// PeriodAverages computes PeriodAverage for each column, in the given order.
func PeriodAverages(t *Table, cols []string) ([]models.CategoryValue, error) {
	out := make([]models.CategoryValue, 0, len(cols))
	for _, c := range cols {
		avg, err := PeriodAverage(t, c)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CategoryValue{Category: c, Value: avg})
	}
	return out, nil
}

// ArgMaxAverage returns the column with the strictly greatest period average.
// Ties go to the earlier column in cols. ok is false when no average is defined.
func ArgMaxAverage(t *Table, cols []string) (best string, ok bool, err error) {
	avgs, err := PeriodAverages(t, cols)
	if err != nil {
		return "", false, err
	}
	var top models.Value
	for _, a := range avgs {
		if !a.Value.Valid {
			continue
		}
		if !top.Valid || a.Value.Float > top.Float {
			top, best = a.Value, a.Category
		}
	}
	return best, top.Valid, nil
}

// SubtractGroups derives whole - part per year for each column, e.g.
// women = all - men. The result has one row per year of t (ascending) with
// dimension dim set to label. A year lacking either row, or either value, is
// undefined.
func SubtractGroups(t *Table, dim, whole, part, label string, cols []string) (*Table, error) {
	labels, err := t.Dimension(dim)
	if err != nil {
		return nil, err
	}
	if err := RequireColumns(t, cols...); err != nil {
		return nil, err
	}

	wholeRow := make(map[int]int)
	partRow := make(map[int]int)
	for i, l := range labels {
		switch l {
		case whole:
			wholeRow[t.Years[i]] = i
		case part:
			partRow[t.Years[i]] = i
		}
	}

	years := t.ObservedYears()
	out := &Table{
		Name:       t.Name,
		Years:      years,
		Dimensions: []Dimension{{Name: dim, Labels: make([]string, len(years))}},
	}
	for i := range years {
		out.Dimensions[0].Labels[i] = label
	}
	for _, c := range cols {
		vals, _ := t.Column(c)
		derived := make([]models.Value, len(years))
		for k, y := range years {
			wi, okW := wholeRow[y]
			pi, okP := partRow[y]
			if !okW || !okP || !vals[wi].Valid || !vals[pi].Valid {
				continue
			}
			derived[k] = models.Some(vals[wi].Float - vals[pi].Float)
		}
		out.Columns = append(out.Columns, Column{Name: c, Values: derived})
	}
	return out, nil
}

// ShareOf returns value_i / sum for mutually exclusive parts. A zero sum or a
// missing part leaves every share undefined.
func ShareOf(values []models.Value) []models.Value {
	shares := make([]models.Value, len(values))
	sum := 0.0
	for _, v := range values {
		if !v.Valid {
			return shares
		}
		sum += v.Float
	}
	if sum == 0 {
		return shares
	}
	for i, v := range values {
		shares[i] = models.Some(v.Float / sum)
	}
	return shares
}

// Shares applies ShareOf row-wise over cols. Other columns are dropped.
func Shares(t *Table, cols []string) (*Table, error) {
	sel, err := t.SelectColumns(cols...)
	if err != nil {
		return nil, err
	}
	row := make([]models.Value, len(cols))
	for i := range sel.Years {
		for c := range sel.Columns {
			row[c] = sel.Columns[c].Values[i]
		}
		for c, s := range ShareOf(row) {
			sel.Columns[c].Values[i] = s
		}
	}
	return sel, nil
}

// YearOverYear returns value(y) - value(y-1) for each row of t, aligned with
// t's rows. The delta is undefined when y-1 is absent or either value is
// missing. Years must be unique.
func YearOverYear(t *Table, col string) ([]models.Value, error) {
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	idx, err := t.yearIndex()
	if err != nil {
		return nil, err
	}
	out := make([]models.Value, t.Len())
	for i, y := range t.Years {
		prev, ok := idx[y-1]
		if !ok || !vals[i].Valid || !vals[prev].Valid {
			continue
		}
		out[i] = models.Some(vals[i].Float - vals[prev].Float)
	}
	return out, nil
}

// YearlyTotal sums the sub-period columns parts row-wise into a new column
// named out. A required part that is missing is ErrSchemaMismatch; a missing
// optional part contributes zero. An undefined cell makes the row undefined.
func YearlyTotal(t *Table, parts, optional []string, out string) (*Table, error) {
	var present [][]models.Value
	for _, p := range parts {
		vals, err := t.Column(p)
		if err != nil {
			if slices.Contains(optional, p) {
				continue
			}
			return nil, err
		}
		present = append(present, vals)
	}

	totals := make([]models.Value, t.Len())
	for i := range totals {
		sum, ok := 0.0, true
		for _, vals := range present {
			if !vals[i].Valid {
				ok = false
				break
			}
			sum += vals[i].Float
		}
		if ok {
			totals[i] = models.Some(sum)
		}
	}

	res := &Table{Name: t.Name, Years: slices.Clone(t.Years)}
	for _, d := range t.Dimensions {
		res.Dimensions = append(res.Dimensions, Dimension{Name: d.Name, Labels: slices.Clone(d.Labels)})
	}
	res.Columns = []Column{{Name: out, Values: totals}}
	return res, nil
}

// Latest returns the KPI for col at the latest year of t, with the delta to
// the previous calendar year.
func Latest(t *Table, col string) (models.KPI, error) {
	if err := t.CheckNotEmpty(); err != nil {
		return models.KPI{Measure: col}, err
	}
	vals, err := t.Column(col)
	if err != nil {
		return models.KPI{}, err
	}
	deltas, err := YearOverYear(t, col)
	if err != nil {
		return models.KPI{}, err
	}
	last := 0
	for i, y := range t.Years {
		if y > t.Years[last] {
			last = i
		}
	}
	return models.KPI{
		Measure:  col,
		Year:     t.Years[last],
		Value:    vals[last],
		Delta:    deltas[last],
		PrevYear: t.Years[last] - 1,
	}, nil
}
