package header

import (
	"fmt"
	"strings"

	"github.com/Veraticus/etfsave/internal/grid"
)

// MaxHeaderScan is how many leading rows are searched for the header.
const MaxHeaderScan = 10

// Column is a bound header column.
type Column struct {
	Header string
	Index  int
}

// Table is a grid with its header row and semantic columns resolved.
type Table struct {
	Columns   map[Role]Column
	Strategy  Strategy
	Grid      grid.Grid
	Headers   []string
	Warnings  []string
	HeaderRow int
}

// Column returns the column bound to role.
func (t Table) Column(role Role) (Column, bool) {
	c, ok := t.Columns[role]
	return c, ok
}

// Unbound lists the roles no rule could bind, in reporting order.
func (t Table) Unbound() []Role {
	var missing []Role
	for _, role := range Roles {
		if _, ok := t.Columns[role]; !ok {
			missing = append(missing, role)
		}
	}
	return missing
}

// Rows returns the data rows below the header row.
func (t Table) Rows() []grid.Row {
	if t.HeaderRow+1 >= len(t.Grid) {
		return nil
	}
	return t.Grid[t.HeaderRow+1:]
}

// Cell returns the value of role in row. The second result is false when the
// role is unbound.
func (t Table) Cell(row grid.Row, role Role) (any, bool) {
	c, ok := t.Columns[role]
	if !ok {
		return nil, false
	}
	return row.Cell(c.Index), true
}

// Resolver finds the header row and binds columns using a rule table.
type Resolver struct {
	rules   []Rule
	maxScan int
}

// NewResolver creates a resolver for rules. Nil rules means DefaultRules.
func NewResolver(rules []Rule) *Resolver {
	if rules == nil {
		rules = DefaultRules
	}
	return &Resolver{
		rules:   sortRules(rules),
		maxScan: MaxHeaderScan,
	}
}

var defaultResolver = NewResolver(nil)

// Resolve resolves g with DefaultRules.
func Resolve(g grid.Grid) Table {
	return defaultResolver.Resolve(g)
}

// Resolve picks the header row of g and binds every role it can. It never
// fails: unresolved pieces are reported in Table.Warnings.
func (r *Resolver) Resolve(g grid.Grid) Table {
	t := Table{
		Grid:    g,
		Columns: make(map[Role]Column),
	}

	t.HeaderRow, t.Strategy = r.findHeaderRow(g)
	if t.Strategy == StrategyDefault {
		t.Warnings = append(t.Warnings, "could not identify header row; using row 0")
	}
	if t.HeaderRow >= len(g) {
		t.Warnings = append(t.Warnings, "grid is empty")
		return t
	}

	raw := g[t.HeaderRow]
	t.Headers = make([]string, len(raw))
	for i, v := range raw {
		t.Headers[i] = Normalize(grid.CellText(v))
	}

	for _, rule := range r.rules {
		if _, bound := t.Columns[rule.Role]; bound {
			continue
		}
		for i, h := range t.Headers {
			if rule.Matches(h) {
				t.Columns[rule.Role] = Column{Index: i, Header: h}
				break
			}
		}
	}

	for _, role := range t.Unbound() {
		t.Warnings = append(t.Warnings, fmt.Sprintf("no column matched role %s", role))
	}

	return t
}

func (r *Resolver) findHeaderRow(g grid.Grid) (int, Strategy) {
	limit := min(r.maxScan, len(g))

	for _, marker := range headerMarkers {
		for i := 0; i < limit; i++ {
			if marker.match(g[i].Texts()) {
				return i, marker.strategy
			}
		}
	}
	return 0, StrategyDefault
}

// Normalize strips embedded line breaks and surrounding whitespace from a
// header cell.
func Normalize(h string) string {
	h = strings.ReplaceAll(h, "\n", "")
	h = strings.ReplaceAll(h, "\r", "")
	return strings.TrimSpace(h)
}
