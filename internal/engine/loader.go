package engine

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/xuri/excelize/v2"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// Source describes one raw table.
type Source struct {
	Name       string   `yaml:"name"`
	Path       string   `yaml:"path"`
	Dimensions []string `yaml:"dimensions"`
	// LowerColumns lowercases category names at ingestion.
	LowerColumns bool `yaml:"lower_columns"`
}

// --- 1. CELL PARSERS ---

// Calendar years outside [minYear, maxYear] are treated as absent data.
const (
	minYear = 1
	maxYear = 9999
)

// parseYear accepts "2018" and "2018.0". Anything else is absent data.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= minYear && n <= maxYear
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < minYear || f > maxYear {
		return 0, false
	}
	return int(f), true
}

// parseCount parses "1,024", "'37'" or " 12.5 ". Unparseable cells are undefined.
func parseCount(s string) models.Value {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "'\"")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return models.None()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.None()
	}
	return models.Some(f)
}

// --- 2. GRID READERS ---

// grid is a header plus string cells; nil cells are nulls.
type grid struct {
	header []string
	rows   [][]*string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV reads the whole file through the arrow CSV reader with every column
// typed as a nullable string, so type inference never rejects a dirty cell.
func readCSV(content []byte) (*grid, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	header, err := stdcsv.NewReader(bytes.NewReader(content)).Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	fields := make([]arrow.Field, len(header))
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		fields[i] = arrow.Field{Name: header[i], Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	r := csv.NewReader(bytes.NewReader(content), schema,
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithNullReader(true, ""),
	)
	defer r.Release()

	g := &grid{header: header}
	for r.Next() {
		rec := r.Record()
		cols := make([]*array.String, rec.NumCols())
		for c := range cols {
			col, ok := rec.Column(c).(*array.String)
			if !ok {
				return nil, fmt.Errorf("column %q: unexpected arrow type %s", header[c], rec.Column(c).DataType())
			}
			cols[c] = col
		}
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make([]*string, len(cols))
			for c, col := range cols {
				if col.IsNull(i) {
					continue
				}
				s := strings.Clone(col.Value(i))
				row[c] = &s
			}
			g.rows = append(g.rows, row)
		}
	}
	if err := r.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return g, nil
}

// readXLSX reads the first sheet; the first row is the header.
func readXLSX(content []byte) (*grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	g := &grid{header: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		g.header[i] = strings.TrimSpace(h)
	}
	for _, raw := range rows[1:] {
		row := make([]*string, len(g.header))
		for c := range row {
			if c < len(raw) && strings.TrimSpace(raw[c]) != "" {
				s := raw[c]
				row[c] = &s
			}
		}
		g.rows = append(g.rows, row)
	}
	return g, nil
}

// --- 3. MAIN LOADER ---

// LoadTable reads and validates one source from fsys.
func LoadTable(ctx context.Context, fsys fs.FS, src Source) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	content, err := fs.ReadFile(fsys, src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceLoad, src.Name, err)
	}

	var g *grid
	switch strings.ToLower(path.Ext(src.Path)) {
	case ".xlsx":
		g, err = readXLSX(content)
	default:
		g, err = readCSV(content)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceLoad, src.Name, err)
	}

	t, err := buildTable(src, g)
	if err != nil {
		return nil, err
	}

	slog.Debug("table loaded",
		slog.String("table", src.Name),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns)),
		slog.Duration("took", time.Since(start)))
	return t, nil
}

// buildTable turns a grid into a validated Table sorted by year.
func buildTable(src Source, g *grid) (*Table, error) {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrSourceLoad, src.Name, fmt.Sprintf(format, args...))
	}

	yearCol := -1
	dimCols := make([]int, len(src.Dimensions))
	for i := range dimCols {
		dimCols[i] = -1
	}
	for i, h := range g.header {
		if yearCol < 0 && strings.EqualFold(h, "year") {
			yearCol = i
			continue
		}
		for d, name := range src.Dimensions {
			if dimCols[d] < 0 && strings.EqualFold(h, name) {
				dimCols[d] = i
			}
		}
	}
	if yearCol < 0 {
		return nil, fail("no year column")
	}
	for d, c := range dimCols {
		if c < 0 {
			return nil, fail("no %q column", src.Dimensions[d])
		}
	}

	// Category columns: everything else, in file order.
	var catCols []int
	for i, h := range g.header {
		if i == yearCol || slices.Contains(dimCols, i) || h == "" {
			continue
		}
		catCols = append(catCols, i)
	}

	t := &Table{Name: src.Name}
	for _, name := range src.Dimensions {
		t.Dimensions = append(t.Dimensions, Dimension{Name: name})
	}
	for _, c := range catCols {
		t.Columns = append(t.Columns, Column{Name: g.header[c]})
	}

	seen := make(map[string]bool)
	for line, row := range g.rows {
		cell := func(c int) string {
			if c >= len(row) || row[c] == nil {
				return ""
			}
			return *row[c]
		}

		year, ok := parseYear(cell(yearCol))
		if !ok {
			continue
		}

		labels := make([]string, len(dimCols))
		for d, c := range dimCols {
			labels[d] = strings.TrimSpace(cell(c))
		}
		key := strconv.Itoa(year) + "\x00" + strings.Join(labels, "\x00")
		if seen[key] {
			return nil, fail("duplicate row for year %d %v", year, labels)
		}
		seen[key] = true

		t.Years = append(t.Years, year)
		for d := range labels {
			t.Dimensions[d].Labels = append(t.Dimensions[d].Labels, labels[d])
		}
		for k, c := range catCols {
			v := parseCount(cell(c))
			if v.Valid && v.Float < 0 {
				return nil, fail("negative value %v in column %q (line %d)", v.Float, t.Columns[k].Name, line+2)
			}
			t.Columns[k].Values = append(t.Columns[k].Values, v)
		}
	}

	t = sortByYear(t)
	if src.LowerColumns {
		t = LowerColumns(t)
	}
	return t, nil
}

// sortByYear returns t with rows stably ordered by year.
func sortByYear(t *Table) *Table {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	slices.SortStableFunc(rows, func(a, b int) int { return t.Years[a] - t.Years[b] })
	return t.selectRows(rows)
}
