package changelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/jsonfile"
	"github.com/Veraticus/etfsave/internal/model"
)

// FileStore persists a changelog as a JSON file.
type FileStore struct {
	Path string
}

// NewFileStore creates a store for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the changelog. A missing file yields an empty changelog with
// exists=false; a file that is not a JSON array yields an empty changelog with
// exists=true.
func (s *FileStore) Load() (model.Changelog, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Changelog{}, false, nil
		}
		return nil, false, fmt.Errorf("failed to read changelog: %w", err)
	}

	cl, err := Decode(data)
	if err != nil {
		slog.Warn("Ignoring unreadable changelog", "path", s.Path, "error", err)
		return model.Changelog{}, true, nil
	}
	return cl, true, nil
}

// Save writes cl atomically.
func (s *FileStore) Save(cl model.Changelog) error {
	data, err := Encode(cl)
	if err != nil {
		return fmt.Errorf("%w: failed to encode changelog: %w", common.ErrPersistence, err)
	}
	if err := jsonfile.WriteAtomic(s.Path, data); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return nil
}

// Encode serializes cl the way changelog.json is published.
func Encode(cl model.Changelog) ([]byte, error) {
	out := make(model.Changelog, len(cl))
	copy(out, cl)
	for i := range out {
		if out[i].Changes == nil {
			out[i].Changes = []model.ChangeEntry{}
		}
	}
	return jsonfile.Encode(out, jsonfile.ChangelogIndent)
}

// Decode parses a changelog document. Anything other than a JSON array of
// batches is an error.
func Decode(data []byte) (model.Changelog, error) {
	var cl model.Changelog
	if err := json.Unmarshal(data, &cl); err != nil {
		return nil, err
	}
	if cl == nil {
		return nil, errors.New("changelog is not a JSON array")
	}
	return cl, nil
}

// Store loads and saves a changelog.
type Store interface {
	Load() (model.Changelog, bool, error)
	Save(cl model.Changelog) error
}

// Record folds changes detected on date into the changelog held by store and
// persists it when needed.
func Record(ctx context.Context, store Store, date time.Time, changes []model.ChangeEntry) (model.Changelog, Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, ActionNone, err
	}

	existing, exists, err := store.Load()
	if err != nil {
		return nil, ActionNone, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	updated, action := Append(existing, exists, date, changes)
	if action.NeedsWrite() {
		if err := store.Save(updated); err != nil {
			return nil, ActionNone, err
		}
	}

	slog.Info("Changelog updated",
		"action", action,
		"changes", len(changes),
		"batches", len(updated))

	return updated, action, nil
}

// BuildResult reports what Build did.
type BuildResult struct {
	Changes   []model.ChangeEntry
	Action    Action
	Changelog model.Changelog
}

// Build diffs current against previous on DefaultFields and records the
// result in store.
func Build(ctx context.Context, store Store, previous, current []map[string]any, date time.Time) (*BuildResult, error) {
	changes := Diff(previous, current, DefaultFields)

	updated, action, err := Record(ctx, store, date, changes)
	if err != nil {
		return nil, err
	}
	return &BuildResult{Changes: changes, Action: action, Changelog: updated}, nil
}
