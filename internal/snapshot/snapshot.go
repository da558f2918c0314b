// Package snapshot persists reconciled snapshots and recovers the previous
// one for diffing.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/jsonfile"
	"github.com/Veraticus/etfsave/internal/model"
)

// Provider yields the snapshot the current run is compared against. An
// unavailable previous snapshot is reported as an empty one.
type Provider interface {
	Previous(ctx context.Context) ([]map[string]any, error)
}

// FileWriter writes snapshots as the published data.json.
type FileWriter struct {
	Path string
}

// NewFileWriter creates a writer for path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{Path: path}
}

// Write replaces the snapshot file with records.
func (w *FileWriter) Write(records []model.OutputRecord) error {
	if records == nil {
		records = []model.OutputRecord{}
	}

	data, err := jsonfile.Encode(records, jsonfile.SnapshotIndent)
	if err != nil {
		return fmt.Errorf("%w: failed to encode snapshot: %w", common.ErrPersistence, err)
	}
	if err := jsonfile.WriteAtomic(w.Path, data); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	slog.Info("Snapshot written", "path", w.Path, "records", len(records))
	return nil
}

// Read loads the snapshot file as generic rows. A missing file yields an
// empty snapshot.
func (w *FileWriter) Read() ([]map[string]any, error) {
	rows, _, err := jsonfile.ReadArray(w.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}
