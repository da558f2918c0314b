// Package pipeline runs one reconciliation: load the report and watch-list,
// compute costs, persist the snapshot, and record drift in the changelog.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/etfsave/internal/changelog"
	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/fee"
	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/header"
	"github.com/Veraticus/etfsave/internal/matcher"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/snapshot"
	"github.com/Veraticus/etfsave/internal/watchlist"
)

// Forwarder uploads a persisted snapshot to a secondary destination.
type Forwarder interface {
	Forward(ctx context.Context, records []model.OutputRecord) error
}

// SnapshotWriter persists the snapshot.
type SnapshotWriter interface {
	Write(records []model.OutputRecord) error
}

// Archiver stores the run in the history database.
type Archiver interface {
	SaveRun(ctx context.Context, run *model.Run) error
}

// GridLoader reads the fee report.
type GridLoader func(path string) (grid.Grid, error)

// ProgressFunc is called after each watch-list entry is reconciled.
type ProgressFunc func(done, total int)

// Pipeline holds the collaborators of a run. Archive, Forwarders, and
// Progress are optional.
type Pipeline struct {
	LoadGrid   GridLoader
	Watchlist  watchlist.Source
	Previous   snapshot.Provider
	Snapshot   SnapshotWriter
	Changelog  changelog.Store
	Archive    Archiver
	Progress   ProgressFunc
	Clock      func() time.Time
	Logger     *slog.Logger
	GridPath   string
	Forwarders []Forwarder
}

// Unmatched is a watch-list entry that produced no record.
type Unmatched struct {
	Err    error
	Entry  model.WatchlistEntry
	Reason string
}

// Report summarizes a run.
type Report struct {
	ChangelogAction changelog.Action
	RunID           string
	Records         []model.OutputRecord
	Unmatched       []Unmatched
	Changes         []model.ChangeEntry
	Warnings        []string
	ForwardErrors   []error
}

// Run executes the pipeline. Missing inputs degrade to an empty record set;
// persistence failures abort the run; forwarding failures are only reported.
// If neither the report nor the watch-list is available nothing is persisted
// and the returned error wraps common.ErrMissingSource.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	logger := common.OrDefault(p.Logger)
	report := &Report{Records: []model.OutputRecord{}}

	warn := func(msg string, err error, args ...any) {
		logger.Warn(msg, append(args, "error", err)...)
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", msg, err))
	}

	table, gridErr := p.loadTable()
	if gridErr != nil {
		warn("Fee report unavailable", gridErr, "path", p.GridPath)
	} else {
		for _, w := range table.Warnings {
			logger.Warn("Header resolution", "detail", w)
			report.Warnings = append(report.Warnings, w)
		}
		logger.Info("Resolved fee report",
			"header_row", table.HeaderRow,
			"strategy", table.Strategy,
			"rows", len(table.Rows()))
	}

	entries, listErr := p.Watchlist.Entries(ctx)
	if listErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		warn("Watch-list unavailable", listErr)
	}

	if gridErr != nil && listErr != nil {
		return nil, fmt.Errorf("%w: no fee report and no watch-list: %w",
			common.ErrMissingSource, errors.Join(gridErr, listErr))
	}

	if gridErr == nil && listErr == nil {
		p.reconcile(logger, table, entries, report)
	}

	previous, err := p.Previous.Previous(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		warn("Previous snapshot unavailable", err)
		previous = []map[string]any{}
	}

	report.Changes = changelog.Diff(previous, changelog.Rows(report.Records), changelog.DefaultFields)

	if err := p.Snapshot.Write(report.Records); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	now := p.now()

	if p.Archive != nil {
		run := &model.Run{
			CreatedAt:  now,
			SourceFile: p.GridPath,
			Snapshot:   model.Snapshot(report.Records),
			Unmatched:  len(report.Unmatched),
			Changes:    len(report.Changes),
		}
		if err := p.Archive.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("%w: failed to archive run: %w", common.ErrPersistence, err)
		}
		report.RunID = run.ID
	}

	_, action, err := changelog.Record(ctx, p.Changelog, now, report.Changes)
	if err != nil {
		return nil, fmt.Errorf("failed to update changelog: %w", err)
	}
	report.ChangelogAction = action

	if len(report.Records) > 0 {
		for _, f := range p.Forwarders {
			if err := f.Forward(ctx, report.Records); err != nil {
				logger.Warn("Forwarding failed", "error", err)
				report.ForwardErrors = append(report.ForwardErrors, err)
			}
		}
	}

	logger.Info("Run complete",
		"records", len(report.Records),
		"unmatched", len(report.Unmatched),
		"changes", len(report.Changes),
		"changelog", action)

	return report, nil
}

func (p *Pipeline) loadTable() (header.Table, error) {
	load := p.LoadGrid
	if load == nil {
		load = grid.Load
	}

	g, err := load(p.GridPath)
	if err != nil {
		if !errors.Is(err, common.ErrMissingSource) {
			err = fmt.Errorf("%w: %w", common.ErrMissingSource, err)
		}
		return header.Table{}, err
	}
	return header.Resolve(g), nil
}

func (p *Pipeline) reconcile(logger *slog.Logger, table header.Table, entries []model.WatchlistEntry, report *Report) {
	idx := matcher.NewIndex(table)

	for i, entry := range entries {
		row, err := idx.Match(entry)
		if err != nil {
			reason := matcher.Reason(err)
			logger.Info("Entry not matched",
				"ticker", entry.TickerCode,
				"name", entry.TickerName,
				"standard_code", entry.StandardCode,
				"reason", reason)
			report.Unmatched = append(report.Unmatched, Unmatched{Entry: entry, Reason: reason, Err: err})
		} else {
			if dup := idx.Duplicates(entry.StandardCode); dup > 0 {
				logger.Debug("Standard code appears more than once; using first row",
					"standard_code", entry.StandardCode, "extra_rows", dup)
			}
			costs := fee.Compute(row, table)
			logger.Debug("Entry matched",
				"ticker", entry.TickerCode,
				"total_fee", costs.TotalFee,
				"other_cost", costs.OtherCost,
				"ter", costs.TER(),
				"trading_cost", costs.TradingCost,
				"real_cost", costs.RealCost)
			report.Records = append(report.Records, fee.Record(entry, costs))
		}

		if p.Progress != nil {
			p.Progress(i+1, len(entries))
		}
	}
}

func (p *Pipeline) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}
