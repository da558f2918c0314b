// Package grid reads spreadsheet-like files into an untyped 2-D grid of cells.
//
// A Grid makes no assumption about where the header is. Cells are nil, a
// string, or a float64; everything else is rendered through CellText.
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row is one spreadsheet row.
type Row []any

// Grid is an ordered sequence of rows with no header assumed.
type Grid []Row

// Cell returns the value at column i, or nil when the row is shorter.
func (r Row) Cell(i int) any {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// Text returns the cell at column i rendered as text.
func (r Row) Text(i int) string {
	return CellText(r.Cell(i))
}

// Texts renders every cell of the row.
func (r Row) Texts() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = CellText(v)
	}
	return out
}

// CellText renders a cell value as text. Integral floats drop their
// fractional part so identifiers read back as typed.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ""
		}
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// fromStrings converts reader output into a Grid, mapping blank cells to nil.
func fromStrings(rows [][]string) Grid {
	g := make(Grid, 0, len(rows))
	for _, cells := range rows {
		row := make(Row, len(cells))
		for i, c := range cells {
			if strings.TrimSpace(c) == "" {
				continue
			}
			row[i] = c
		}
		g = append(g, row)
	}
	return g
}
