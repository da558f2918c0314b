package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/etfsave/internal/changelog"
	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/config"
	"github.com/Veraticus/etfsave/internal/gas"
	"github.com/Veraticus/etfsave/internal/sheets"
	"github.com/Veraticus/etfsave/internal/snapshot"
	"github.com/Veraticus/etfsave/internal/storage"
	"github.com/Veraticus/etfsave/internal/vcs"
	"github.com/Veraticus/etfsave/internal/watchlist"
)

// Adapters are the remote services cfg enables. A nil field is not configured.
type Adapters struct {
	GAS    *gas.Client
	Sheets sheets.Values
}

// NewAdapters connects the remote services named in cfg. An unreachable
// Sheets API is only an error when the watch-list must come from it.
func NewAdapters(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Adapters, error) {
	logger = common.OrDefault(logger)
	a := &Adapters{}

	if cfg.RemoteURL != "" {
		a.GAS = gas.NewClient(cfg.RemoteURL, cfg.Timeout, logger)
	}

	if cfg.SheetsUsable() {
		v, err := sheets.NewValues(ctx, cfg.Sheets)
		switch {
		case err == nil:
			a.Sheets = v
		case cfg.WatchlistSource == config.WatchlistSheets:
			return nil, err
		default:
			logger.Warn("Google Sheets unavailable", "error", err)
		}
	}

	return a, nil
}

// Watchlist returns the watch-list source selected by cfg. Auto prefers the
// web app, then the Sheets API, and falls back to the local file.
func (a *Adapters) Watchlist(cfg config.Config, logger *slog.Logger) (watchlist.Source, error) {
	file := watchlist.NewFileSource(cfg.WatchlistPath)

	switch cfg.WatchlistSource {
	case config.WatchlistFile:
		return file, nil
	case config.WatchlistGAS:
		if a.GAS == nil {
			return nil, fmt.Errorf("%w: remote_url", common.ErrMissingConfig)
		}
		return a.GAS, nil
	case config.WatchlistSheets:
		if a.Sheets == nil {
			return nil, fmt.Errorf("%w: sheets credentials", common.ErrMissingConfig)
		}
		return sheets.NewReader(a.Sheets, cfg.Sheets, logger), nil
	}

	var primary watchlist.Source
	switch {
	case a.GAS != nil:
		primary = a.GAS
	case a.Sheets != nil:
		primary = sheets.NewReader(a.Sheets, cfg.Sheets, logger)
	default:
		return file, nil
	}
	return &watchlist.Fallback{Primary: primary, Secondary: file, Logger: logger}, nil
}

// Forwarders returns the snapshot destinations, or none when forwarding is off.
func (a *Adapters) Forwarders(cfg config.Config, logger *slog.Logger) []Forwarder {
	if !cfg.Forward {
		return nil
	}

	var out []Forwarder
	if a.GAS != nil {
		out = append(out, a.GAS)
	}
	if a.Sheets != nil {
		out = append(out, sheets.NewWriter(a.Sheets, cfg.Sheets, logger))
	}
	return out
}

// Built is a configured pipeline together with the resources it owns.
type Built struct {
	*Pipeline
	History *storage.SQLiteStorage
	closers []io.Closer
}

// Close releases the history database, if one was opened.
func (b *Built) Close() error {
	var firstErr error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FromConfig wires a pipeline from cfg for the report at gridPath.
func FromConfig(ctx context.Context, cfg config.Config, gridPath string, logger *slog.Logger) (*Built, error) {
	logger = common.OrDefault(logger)

	adapters, err := NewAdapters(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	source, err := adapters.Watchlist(cfg, logger)
	if err != nil {
		return nil, err
	}

	b := &Built{Pipeline: &Pipeline{
		GridPath:   gridPath,
		Watchlist:  source,
		Snapshot:   snapshot.NewFileWriter(cfg.DataPath),
		Changelog:  changelog.NewFileStore(cfg.ChangelogPath),
		Forwarders: adapters.Forwarders(cfg, logger),
		Logger:     logger,
	}}

	if cfg.DatabasePath != "" {
		db, err := storage.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open history database: %w", common.ErrPersistence, err)
		}
		b.History = db
		b.Archive = db
		b.closers = append(b.closers, db)
	}

	switch cfg.PreviousSource {
	case config.PreviousFromHistory:
		if b.History == nil {
			return nil, fmt.Errorf("%w: history previous source needs database_path", common.ErrMissingConfig)
		}
		b.Previous = &snapshot.HistoryProvider{Runs: b.History}
	case config.PreviousFromFile:
		b.Previous = &snapshot.FileProvider{Path: cfg.DataPath}
	default:
		b.Previous = &snapshot.GitProvider{Git: vcs.Git{}, Path: cfg.DataPath}
	}

	return b, nil
}
