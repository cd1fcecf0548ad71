package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// LabelPair maps a category on the left table to its counterpart on the right.
type LabelPair struct {
	Left  string
	Right string
}

// Mapping is an explicit, ordered correspondence between two category sets.
type Mapping []LabelPair

// IdentityMapping pairs each label with itself.
func IdentityMapping(labels ...string) Mapping {
	m := make(Mapping, len(labels))
	for i, l := range labels {
		m[i] = LabelPair{Left: l, Right: l}
	}
	return m
}

// Left returns the left labels in mapping order.
func (m Mapping) Left() []string {
	out := make([]string, len(m))
	for i, p := range m {
		out[i] = p.Left
	}
	return out
}

// RightOf returns the right label paired with left.
func (m Mapping) RightOf(left string) (string, bool) {
	for _, p := range m {
		if strings.EqualFold(p.Left, left) {
			return p.Right, true
		}
	}
	return "", false
}

// Restrict keeps the pairs whose left label is in labels, in labels order.
func (m Mapping) Restrict(labels []string) Mapping {
	out := make(Mapping, 0, len(labels))
	for _, l := range labels {
		if r, ok := m.RightOf(l); ok {
			out = append(out, LabelPair{Left: l, Right: r})
		}
	}
	return out
}

// LowerColumns lowercases every category name.
func LowerColumns(t *Table) *Table {
	out := t.Clone()
	for i := range out.Columns {
		out.Columns[i].Name = strings.ToLower(out.Columns[i].Name)
	}
	return out
}

// CanonicalizeColumns renames any column that matches one of names
// case-insensitively to that exact spelling. Other columns are untouched.
func CanonicalizeColumns(t *Table, names []string) *Table {
	out := t.Clone()
	for i, c := range out.Columns {
		for _, n := range names {
			if strings.EqualFold(c.Name, n) {
				out.Columns[i].Name = n
				break
			}
		}
	}
	return out
}

// findFold returns the index of the first column equal-fold to name.
func (t *Table) findFold(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// Align returns copies of left and right holding only the mapped categories,
// both named by the left label and in mapping order. Column matching is
// case-insensitive. Categories outside the mapping are dropped. A mapped
// category absent from one side becomes an all-undefined column there; it is
// never filled with zero. Every dim must exist on both tables.
func Align(left, right *Table, m Mapping, dims ...string) (*Table, *Table, error) {
	for _, d := range dims {
		if _, err := left.Dimension(d); err != nil {
			return nil, nil, err
		}
		if _, err := right.Dimension(d); err != nil {
			return nil, nil, err
		}
	}
	return alignSide(left, m, func(p LabelPair) string { return p.Left }),
		alignSide(right, m, func(p LabelPair) string { return p.Right }), nil
}

func alignSide(t *Table, m Mapping, label func(LabelPair) string) *Table {
	out := &Table{Name: t.Name, Years: slices.Clone(t.Years)}
	for _, d := range t.Dimensions {
		out.Dimensions = append(out.Dimensions, Dimension{Name: d.Name, Labels: slices.Clone(d.Labels)})
	}
	for _, p := range m {
		col := Column{Name: p.Left}
		if i := t.findFold(label(p)); i >= 0 {
			col.Values = slices.Clone(t.Columns[i].Values)
		} else {
			col.Values = make([]models.Value, t.Len())
		}
		out.Columns = append(out.Columns, col)
	}
	return out
}

// RequireColumns fails with ErrSchemaMismatch if any name is missing.
func RequireColumns(t *Table, names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: table %q lacks %s", ErrSchemaMismatch, t.Name, strings.Join(missing, ", "))
	}
	return nil
}
