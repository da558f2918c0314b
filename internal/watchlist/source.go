package watchlist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/model"
)

// FileSource reads a tab-separated watch-list such as list.txt.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Entries reads the file. A missing file wraps common.ErrMissingSource.
func (s *FileSource) Entries(ctx context.Context) ([]model.WatchlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: watch-list %s not found", common.ErrMissingSource, s.Path)
		}
		return nil, fmt.Errorf("failed to open watch-list: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("failed to close watch-list", "path", s.Path, "error", closeErr)
		}
	}()

	g, err := grid.ReadDelimited(f, '\t')
	if err != nil {
		return nil, err
	}

	entries, err := FromGrid(g)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	slog.Debug("Loaded watch-list file", "path", s.Path, "entries", len(entries))
	return entries, nil
}

// StaticSource returns a fixed watch-list.
type StaticSource struct {
	Items []model.WatchlistEntry
}

// Entries returns a copy of the fixed entries.
func (s *StaticSource) Entries(_ context.Context) ([]model.WatchlistEntry, error) {
	out := make([]model.WatchlistEntry, len(s.Items))
	copy(out, s.Items)
	return out, nil
}

// Fallback reads Primary and, when it fails, Secondary.
type Fallback struct {
	Primary   Source
	Secondary Source
	Logger    *slog.Logger
}

// Entries returns the primary entries, falling back on error. Both failing
// wraps common.ErrMissingSource.
func (f *Fallback) Entries(ctx context.Context) ([]model.WatchlistEntry, error) {
	logger := common.OrDefault(f.Logger)

	entries, primaryErr := f.Primary.Entries(ctx)
	if primaryErr == nil {
		return entries, nil
	}
	if f.Secondary == nil {
		return nil, primaryErr
	}

	logger.Warn("Primary watch-list unavailable, using fallback", "error", primaryErr)

	entries, err := f.Secondary.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: primary: %w; fallback: %w", common.ErrMissingSource, primaryErr, err)
	}
	return entries, nil
}
