package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/etfsave/internal/model"
)

// SaveRun archives run and its snapshot. A missing ID or CreatedAt is filled
// in; Matched is always the snapshot length.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	run.Matched = len(run.Snapshot)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, source_file, matched, unmatched, changes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt, run.SourceFile, run.Matched, run.Unmatched, run.Changes)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_records (
			run_id, position, category, ticker_code, ticker_name,
			total_fee, other_cost, trading_cost, real_cost
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range run.Snapshot {
		_, err := stmt.ExecContext(ctx,
			run.ID, i, r.Category, r.TickerCode, r.TickerName,
			r.TotalFee, r.OtherCost, r.TradingCost, r.RealCost,
		)
		if err != nil {
			return fmt.Errorf("failed to save record %s: %w", r.TickerCode, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a run and its snapshot by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	run, err := s.scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, created_at, source_file, matched, unmatched, changes
		FROM runs
		WHERE id = ?
	`, id))
	if err != nil {
		return nil, err
	}

	if run.Snapshot, err = s.getSnapshot(ctx, s.db, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRun loads the most recently archived run, or ErrRunNotFound when the
// history is empty.
func (s *SQLiteStorage) LatestRun(ctx context.Context) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	run, err := s.scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, created_at, source_file, matched, unmatched, changes
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`))
	if err != nil {
		return nil, err
	}

	if run.Snapshot, err = s.getSnapshot(ctx, s.db, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns run summaries, newest first, without snapshots. A
// non-positive limit returns every run.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source_file, matched, unmatched, changes
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.SourceFile, &run.Matched, &run.Unmatched, &run.Changes); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FundHistory returns every archived observation of tickerCode, oldest first.
func (s *SQLiteStorage) FundHistory(ctx context.Context, tickerCode string) ([]model.FundObservation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tickerCode, "tickerCode"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.created_at,
			rr.category, rr.ticker_code, rr.ticker_name,
			rr.total_fee, rr.other_cost, rr.trading_cost, rr.real_cost
		FROM run_records rr
		JOIN runs r ON r.id = rr.run_id
		WHERE rr.ticker_code = ?
		ORDER BY r.created_at ASC, r.rowid ASC, rr.position ASC
	`, tickerCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []model.FundObservation
	for rows.Next() {
		var obs model.FundObservation
		rec := &obs.Record
		if err := rows.Scan(
			&obs.RunID, &obs.RecordedAt,
			&rec.Category, &rec.TickerCode, &rec.TickerName,
			&rec.TotalFee, &rec.OtherCost, &rec.TradingCost, &rec.RealCost,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fund history: %w", err)
		}
		history = append(history, obs)
	}
	return history, rows.Err()
}

func (s *SQLiteStorage) scanRun(row *sql.Row) (*model.Run, error) {
	var run model.Run
	err := row.Scan(&run.ID, &run.CreatedAt, &run.SourceFile, &run.Matched, &run.Unmatched, &run.Changes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

func (s *SQLiteStorage) getSnapshot(ctx context.Context, q queryable, runID string) (model.Snapshot, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT category, ticker_code, ticker_name,
			total_fee, other_cost, trading_cost, real_cost
		FROM run_records
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := model.Snapshot{}
	for rows.Next() {
		var r model.OutputRecord
		if err := rows.Scan(&r.Category, &r.TickerCode, &r.TickerName,
			&r.TotalFee, &r.OtherCost, &r.TradingCost, &r.RealCost); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		snapshot = append(snapshot, r)
	}
	return snapshot, rows.Err()
}
