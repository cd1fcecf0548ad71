package engine

import "fmt"

// FilterYears keeps rows with start <= year <= end in their original order.
// A window outside the observed years gives an empty table, not an error.
func FilterYears(t *Table, start, end int) (*Table, error) {
	if start > end {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRange, start, end)
	}
	rows := make([]int, 0, t.Len())
	for i, y := range t.Years {
		if y >= start && y <= end {
			rows = append(rows, i)
		}
	}
	return t.selectRows(rows), nil
}

// SelectDimension keeps rows whose dimension dim equals value.
func SelectDimension(t *Table, dim, value string) (*Table, error) {
	labels, err := t.Dimension(dim)
	if err != nil {
		return nil, err
	}
	rows := make([]int, 0, t.Len())
	for i, l := range labels {
		if l == value {
			rows = append(rows, i)
		}
	}
	return t.selectRows(rows), nil
}

// Window filters to [start, end] and then, if dim is set, to one dimension value.
func Window(t *Table, start, end int, dim, value string) (*Table, error) {
	out, err := FilterYears(t, start, end)
	if err != nil {
		return nil, err
	}
	if dim == "" {
		return out, nil
	}
	return SelectDimension(out, dim, value)
}
