package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the user_version Migrate must reach; anything else
// is fatal.
const ExpectedSchemaVersion = 2

// Migration is one schema step. Its statements run in a single transaction
// together with the user_version bump.
type Migration struct {
	Description string
	Statements  []string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "runs and their reconciled records",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				created_at DATETIME NOT NULL,
				source_file TEXT NOT NULL DEFAULT '',
				matched INTEGER NOT NULL DEFAULT 0,
				unmatched INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX idx_runs_created_at ON runs(created_at)`,
			`CREATE TABLE IF NOT EXISTS run_records (
				run_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				category TEXT NOT NULL,
				ticker_code TEXT NOT NULL,
				ticker_name TEXT NOT NULL,
				total_fee REAL NOT NULL,
				other_cost REAL NOT NULL,
				trading_cost REAL NOT NULL,
				real_cost REAL NOT NULL,
				PRIMARY KEY (run_id, position),
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			)`,
		},
	},
	{
		Version:     2,
		Description: "change counts and per-ticker lookups",
		Statements: []string{
			`ALTER TABLE runs ADD COLUMN changes INTEGER NOT NULL DEFAULT 0`,
			`CREATE INDEX idx_run_records_ticker ON run_records(ticker_code)`,
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion, skipping steps the
// database has already applied.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return err
		}
		slog.Debug("Applied migration", "version", m.Version, "description", m.Description)
	}

	got, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if got != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, got)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// SchemaVersion reports the database's PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
