// Package changelog diffs successive snapshots and maintains the dated
// changelog of fee drift.
package changelog

import (
	"sort"
	"strings"

	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/numeric"
)

// DefaultFields are the tracked fee fields, in declaration order.
var DefaultFields = model.TrackedFields

// Key identifies a fund across snapshots.
type Key struct {
	Code string
	Name string
}

// KeyOf builds the composite key of a snapshot row.
func KeyOf(row map[string]any) Key {
	return Key{
		Code: strings.TrimSpace(grid.CellText(row[model.FieldTickerCode])),
		Name: strings.TrimSpace(grid.CellText(row[model.FieldTickerName])),
	}
}

// index maps keys to rows, remembering first-seen order. Rows whose key is
// entirely blank are dropped; a later row with the same key replaces the
// earlier one.
type index struct {
	rows  map[Key]map[string]any
	order []Key
}

func newIndex(rows []map[string]any) index {
	idx := index{rows: make(map[Key]map[string]any, len(rows))}
	for _, row := range rows {
		k := KeyOf(row)
		if k.Code == "" && k.Name == "" {
			continue
		}
		if _, seen := idx.rows[k]; !seen {
			idx.order = append(idx.order, k)
		}
		idx.rows[k] = row
	}
	return idx
}

// Diff reports every tracked field that changed for funds present in both
// snapshots. Funds that appear or disappear between snapshots are not
// reported. Results are ordered by code, then by field declaration order.
func Diff(previous, current []map[string]any, fields []string) []model.ChangeEntry {
	prev := newIndex(previous)
	curr := newIndex(current)

	fieldOrder := make(map[string]int, len(fields))
	for i, f := range fields {
		fieldOrder[f] = i
	}

	changes := []model.ChangeEntry{}
	for _, k := range curr.order {
		before, ok := prev.rows[k]
		if !ok {
			continue
		}
		after := curr.rows[k]

		for _, field := range fields {
			b := numeric.ToNullable(before[field])
			a := numeric.ToNullable(after[field])
			if numeric.Equal(b, a) {
				continue
			}
			changes = append(changes, model.ChangeEntry{
				Code:   k.Code,
				Name:   k.Name,
				Field:  field,
				Before: b,
				After:  a,
			})
		}
	}

	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Code != changes[j].Code {
			return changes[i].Code < changes[j].Code
		}
		return fieldOrder[changes[i].Field] < fieldOrder[changes[j].Field]
	})

	return changes
}

// Rows converts typed records to generic rows.
func Rows(records []model.OutputRecord) []map[string]any {
	return model.Snapshot(records).Rows()
}
