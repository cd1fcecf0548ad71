// Package engine loads the raw yearly tables and derives chart-ready series
// from them. Nothing here mutates a table it was given.
package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// Column is one numeric category column.
type Column struct {
	Name   string
	Values []models.Value
}

// Dimension is one label column (group, ethnicity, source).
type Dimension struct {
	Name   string
	Labels []string
}

// Table holds a series in struct-of-arrays form. Row i is Years[i] plus the
// i-th entry of every dimension and column. Column order is the declared
// category order. Tables are never modified after construction; every
// transformation builds a new one.
type Table struct {
	Name       string
	Years      []int
	Dimensions []Dimension
	Columns    []Column
}

func (t *Table) Len() int { return len(t.Years) }

func (t *Table) Empty() bool { return len(t.Years) == 0 }

// CheckNotEmpty reports an empty table as ErrEmptySelection.
func (t *Table) CheckNotEmpty() error {
	if t.Empty() {
		return fmt.Errorf("%w: %s", ErrEmptySelection, t.Name)
	}
	return nil
}

// ColumnNames returns category names in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) dimensionIndex(name string) int {
	for i, d := range t.Dimensions {
		if strings.EqualFold(d.Name, name) {
			return i
		}
	}
	return -1
}

// HasColumn reports whether a category column exists (exact name).
func (t *Table) HasColumn(name string) bool { return t.columnIndex(name) >= 0 }

// Column returns the values of a category column or ErrSchemaMismatch.
func (t *Table) Column(name string) ([]models.Value, error) {
	i := t.columnIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: table %q has no column %q", ErrSchemaMismatch, t.Name, name)
	}
	return t.Columns[i].Values, nil
}

// Dimension returns the labels of a dimension column or ErrSchemaMismatch.
func (t *Table) Dimension(name string) ([]string, error) {
	i := t.dimensionIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: table %q has no %q dimension", ErrSchemaMismatch, t.Name, name)
	}
	return t.Dimensions[i].Labels, nil
}

// Labels returns the dimension labels of row i in dimension order.
func (t *Table) Labels(i int) []string {
	if len(t.Dimensions) == 0 {
		return nil
	}
	out := make([]string, len(t.Dimensions))
	for d, dim := range t.Dimensions {
		out[d] = dim.Labels[i]
	}
	return out
}

// DimensionNames returns dimension names in order.
func (t *Table) DimensionNames() []string {
	names := make([]string, len(t.Dimensions))
	for i, d := range t.Dimensions {
		names[i] = d.Name
	}
	return names
}

// ObservedYears returns the distinct years in ascending order.
func (t *Table) ObservedYears() []int {
	years := slices.Clone(t.Years)
	slices.Sort(years)
	return slices.Compact(years)
}

// Clone deep-copies every backing array.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Years: slices.Clone(t.Years)}
	for _, d := range t.Dimensions {
		out.Dimensions = append(out.Dimensions, Dimension{Name: d.Name, Labels: slices.Clone(d.Labels)})
	}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, Column{Name: c.Name, Values: slices.Clone(c.Values)})
	}
	return out
}

// selectRows builds a new table from the given row indices, in that order.
func (t *Table) selectRows(rows []int) *Table {
	out := &Table{Name: t.Name, Years: make([]int, len(rows))}
	for k, r := range rows {
		out.Years[k] = t.Years[r]
	}
	for _, d := range t.Dimensions {
		labels := make([]string, len(rows))
		for k, r := range rows {
			labels[k] = d.Labels[r]
		}
		out.Dimensions = append(out.Dimensions, Dimension{Name: d.Name, Labels: labels})
	}
	for _, c := range t.Columns {
		vals := make([]models.Value, len(rows))
		for k, r := range rows {
			vals[k] = c.Values[r]
		}
		out.Columns = append(out.Columns, Column{Name: c.Name, Values: vals})
	}
	return out
}

// SelectColumns keeps the named columns in the given order.
func (t *Table) SelectColumns(names ...string) (*Table, error) {
	out := &Table{Name: t.Name, Years: slices.Clone(t.Years)}
	for _, d := range t.Dimensions {
		out.Dimensions = append(out.Dimensions, Dimension{Name: d.Name, Labels: slices.Clone(d.Labels)})
	}
	for _, n := range names {
		vals, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		out.Columns = append(out.Columns, Column{Name: n, Values: slices.Clone(vals)})
	}
	return out, nil
}

// yearIndex maps each year to its row, failing on duplicates.
func (t *Table) yearIndex() (map[int]int, error) {
	idx := make(map[int]int, len(t.Years))
	for i, y := range t.Years {
		if _, dup := idx[y]; dup {
			return nil, fmt.Errorf("%w: table %q has more than one row for year %d", ErrSchemaMismatch, t.Name, y)
		}
		idx[y] = i
	}
	return idx, nil
}

// Wide converts the table into the renderer's wide form.
func (t *Table) Wide() models.WideSeries {
	ws := models.WideSeries{
		Dimensions: t.DimensionNames(),
		Columns:    t.ColumnNames(),
		Rows:       make([]models.WideRow, t.Len()),
		NoData:     t.Empty(),
	}
	for i, y := range t.Years {
		vals := make([]models.Value, len(t.Columns))
		for c, col := range t.Columns {
			vals[c] = col.Values[i]
		}
		ws.Rows[i] = models.WideRow{Year: y, Labels: t.Labels(i), Values: vals}
	}
	return ws
}
