package normalize

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// scanFloats reads every whitespace-separated value from r as a float64.
// Vendor block files are bare streams of numbers with arbitrary line
// breaks.
func scanFloats(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	var vals []float64
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", len(vals)+1, err)
		}
		vals = append(vals, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return vals, nil
}

// table holds a whitespace-separated table with a header line.
type table struct {
	columns []string
	rows    [][]float64
}

// readTable parses a header line followed by float rows. Blank lines are
// skipped; every data row must have exactly one value per header column.
func readTable(r io.Reader) (*table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	t := &table{}
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if t.columns == nil {
			t.columns = fields
			continue
		}
		if len(fields) != len(t.columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d columns",
				len(t.rows)+1, len(fields), len(t.columns))
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", len(t.rows)+1, t.columns[i], err)
			}
			row[i] = v
		}
		t.rows = append(t.rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if t.columns == nil {
		return nil, fmt.Errorf("empty table")
	}
	return t, nil
}

// columnIndex returns the position of a named column.
func (t *table) columnIndex(name string) (int, error) {
	for i, c := range t.columns {
		if c == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("table has no column %q (columns: %s)", name, strings.Join(t.columns, " "))
}

// column extracts a named column as a slice.
func (t *table) column(name string) ([]float64, error) {
	idx, err := t.columnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// uniqueSorted returns the distinct values of vals in ascending order.
func uniqueSorted(vals []float64) []float64 {
	seen := make(map[float64]bool, len(vals))
	var out []float64
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// indexOf builds a value-to-index lookup for an axis.
func indexOf(axis []float64) map[float64]int {
	m := make(map[float64]int, len(axis))
	for i, v := range axis {
		m[v] = i
	}
	return m
}
