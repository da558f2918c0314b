package model

import "time"

// Date layouts used in changelog batches.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ChangeEntry is one tracked field that drifted between two snapshots.
// A nil Before or After means the value was not recorded on that side.
type ChangeEntry struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Field  string   `json:"field"`
	Before *float64 `json:"before"`
	After  *float64 `json:"after"`
}

// ChangelogBatch groups the changes detected on one calendar date.
type ChangelogBatch struct {
	Month     string        `json:"month"`
	UpdatedAt string        `json:"updatedAt"`
	Changes   []ChangeEntry `json:"changes"`
}

// NewChangelogBatch builds the batch for date.
func NewChangelogBatch(date time.Time, changes []ChangeEntry) ChangelogBatch {
	return ChangelogBatch{
		Month:     date.Format(MonthLayout),
		UpdatedAt: date.Format(DateLayout),
		Changes:   changes,
	}
}

// Changelog is the ordered history of batches, oldest first.
type Changelog []ChangelogBatch
