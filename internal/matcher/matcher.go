// Package matcher pairs watch-list entries with rows of a resolved fee table.
//
// Matching is strict: the row's standard code, trimmed, must equal the
// entry's standard code, trimmed. There is no name-based or partial fallback.
// When several rows share a code the first one in row order wins.
package matcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/header"
	"github.com/Veraticus/etfsave/internal/model"
)

// Reasons an entry is not found. All wrap common.ErrUnmatchedEntry.
var (
	ErrEmptyStandardCode    = fmt.Errorf("%w: entry has no standard code", common.ErrUnmatchedEntry)
	ErrNoStandardCodeColumn = fmt.Errorf("%w: no standard code column", common.ErrUnmatchedEntry)
	ErrNotFound             = fmt.Errorf("%w: standard code not in report", common.ErrUnmatchedEntry)
)

// Match returns the first row of t whose standard code equals the entry's.
func Match(t header.Table, entry model.WatchlistEntry) (grid.Row, error) {
	code := strings.TrimSpace(entry.StandardCode)
	if code == "" {
		return nil, ErrEmptyStandardCode
	}

	col, ok := t.Column(header.RoleStandardCode)
	if !ok {
		return nil, ErrNoStandardCodeColumn
	}

	for _, row := range t.Rows() {
		if strings.TrimSpace(row.Text(col.Index)) == code {
			return row, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
}

// Index is a precomputed code -> row lookup over one table. It returns the
// same rows as Match without rescanning the grid for every entry.
type Index struct {
	rows       map[string]grid.Row
	duplicates map[string]int
	err        error
}

// NewIndex indexes the data rows of t by standard code.
func NewIndex(t header.Table) *Index {
	idx := &Index{
		rows:       make(map[string]grid.Row),
		duplicates: make(map[string]int),
	}

	col, ok := t.Column(header.RoleStandardCode)
	if !ok {
		idx.err = ErrNoStandardCodeColumn
		return idx
	}

	for _, row := range t.Rows() {
		code := strings.TrimSpace(row.Text(col.Index))
		if code == "" {
			continue
		}
		if _, seen := idx.rows[code]; seen {
			idx.duplicates[code]++
			continue
		}
		idx.rows[code] = row
	}

	return idx
}

// Match looks up entry in the index.
func (idx *Index) Match(entry model.WatchlistEntry) (grid.Row, error) {
	code := strings.TrimSpace(entry.StandardCode)
	if code == "" {
		return nil, ErrEmptyStandardCode
	}
	if idx.err != nil {
		return nil, idx.err
	}

	row, ok := idx.rows[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return row, nil
}

// Duplicates returns how many extra rows were ignored for code.
func (idx *Index) Duplicates(code string) int {
	return idx.duplicates[strings.TrimSpace(code)]
}

// Len is the number of distinct standard codes indexed.
func (idx *Index) Len() int {
	return len(idx.rows)
}

// Reason renders a short skip reason for logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyStandardCode):
		return "empty standard code"
	case errors.Is(err, ErrNoStandardCodeColumn):
		return "standard code column missing"
	case errors.Is(err, ErrNotFound):
		return "not found in report"
	default:
		return err.Error()
	}
}
