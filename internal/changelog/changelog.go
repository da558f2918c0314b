package changelog

import (
	"fmt"
	"time"

	"github.com/Veraticus/etfsave/internal/model"
)

// Action describes what Append did.
type Action string

// Append outcomes.
const (
	// ActionNone: no changes and a changelog already exists.
	ActionNone Action = "none"
	// ActionCreated: no changes and no changelog existed; an empty one should
	// be persisted.
	ActionCreated Action = "created"
	// ActionUnchanged: the latest batch already holds these changes for the date.
	ActionUnchanged Action = "unchanged"
	// ActionReplaced: the latest batch had the same date and was superseded.
	ActionReplaced Action = "replaced"
	// ActionAppended: a new dated batch was added.
	ActionAppended Action = "appended"
)

// NeedsWrite reports whether the changelog must be persisted after a.
func (a Action) NeedsWrite() bool {
	return a == ActionCreated || a == ActionReplaced || a == ActionAppended
}

// Append merges changes detected on date into cl. exists says whether a
// changelog was already persisted. The input slice is never modified.
//
// There is at most one batch per date: a same-day rerun with identical
// changes is a no-op and one with different changes replaces the batch.
func Append(cl model.Changelog, exists bool, date time.Time, changes []model.ChangeEntry) (model.Changelog, Action) {
	if len(changes) == 0 {
		if !exists {
			return model.Changelog{}, ActionCreated
		}
		return cl, ActionNone
	}

	candidate := model.NewChangelogBatch(date, changes)

	out := make(model.Changelog, len(cl), len(cl)+1)
	copy(out, cl)

	if len(out) > 0 {
		last := out[len(out)-1]
		if last.UpdatedAt == candidate.UpdatedAt {
			if SameChanges(last.Changes, candidate.Changes) {
				return out, ActionUnchanged
			}
			out[len(out)-1] = candidate
			return out, ActionReplaced
		}
	}

	return append(out, candidate), ActionAppended
}

// SameChanges reports whether a and b hold the same entries, ignoring order.
func SameChanges(a, b []model.ChangeEntry) bool {
	if len(a) != len(b) {
		return false
	}

	counts := make(map[string]int, len(a))
	for _, c := range a {
		counts[entryKey(c)]++
	}
	for _, c := range b {
		k := entryKey(c)
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}

func entryKey(c model.ChangeEntry) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%s", c.Code, c.Name, c.Field, nullable(c.Before), nullable(c.After))
}

func nullable(f *float64) string {
	if f == nil {
		return "null"
	}
	return fmt.Sprintf("%v", *f)
}
