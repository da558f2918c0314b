package model

import "time"

// Run is one archived pipeline execution.
type Run struct {
	CreatedAt  time.Time
	ID         string
	SourceFile string
	Snapshot   Snapshot
	Matched    int
	Unmatched  int
	Changes    int
}

// FundObservation is one fund's costs as recorded by a run.
type FundObservation struct {
	RecordedAt time.Time
	RunID      string
	Record     OutputRecord
}
