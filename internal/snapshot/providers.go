package snapshot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Veraticus/etfsave/internal/jsonfile"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/storage"
)

// Revision is the git revision the previous snapshot is read from.
const Revision = "HEAD"

// GitShower reads a file at a revision.
type GitShower interface {
	Show(ctx context.Context, rev, path string) ([]byte, error)
}

// GitProvider reads the last committed snapshot.
type GitProvider struct {
	Git  GitShower
	Path string
}

// Previous returns the snapshot committed at HEAD. Any git or decoding failure
// yields an empty snapshot.
func (p *GitProvider) Previous(ctx context.Context) ([]map[string]any, error) {
	data, err := p.Git.Show(ctx, Revision, p.Path)
	if err != nil {
		slog.Warn("No committed snapshot, diffing against an empty one", "path", p.Path, "error", err)
		return []map[string]any{}, nil
	}
	return jsonfile.DecodeArray(data), nil
}

// FileProvider reads the snapshot file still on disk.
type FileProvider struct {
	Path string
}

// Previous returns the file's rows, or an empty snapshot when it is missing
// or unreadable.
func (p *FileProvider) Previous(_ context.Context) ([]map[string]any, error) {
	rows, _, err := jsonfile.ReadArray(p.Path)
	if err != nil {
		slog.Warn("Previous snapshot unreadable", "path", p.Path, "error", err)
		return []map[string]any{}, nil
	}
	if rows == nil {
		return []map[string]any{}, nil
	}
	return rows, nil
}

// RunSource returns the latest archived run.
type RunSource interface {
	LatestRun(ctx context.Context) (*model.Run, error)
}

// HistoryProvider reads the latest run archived in the history database.
type HistoryProvider struct {
	Runs RunSource
}

// Previous returns the latest archived snapshot. An empty history yields an
// empty snapshot; database errors are returned.
func (p *HistoryProvider) Previous(ctx context.Context) ([]map[string]any, error) {
	run, err := p.Runs.LatestRun(ctx)
	if errors.Is(err, storage.ErrRunNotFound) {
		return []map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	return run.Snapshot.Rows(), nil
}

// StaticProvider returns a fixed snapshot.
type StaticProvider struct {
	Rows []map[string]any
}

// NewStaticProvider builds a provider from typed records.
func NewStaticProvider(records []model.OutputRecord) *StaticProvider {
	return &StaticProvider{Rows: model.Snapshot(records).Rows()}
}

// Previous returns the fixed rows.
func (p *StaticProvider) Previous(_ context.Context) ([]map[string]any, error) {
	if p.Rows == nil {
		return []map[string]any{}, nil
	}
	return p.Rows, nil
}
