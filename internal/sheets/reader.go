package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/watchlist"
)

// Reader loads the watch-list from the management tab.
type Reader struct {
	values Values
	logger *slog.Logger
	config Config
}

// NewReader creates a reader over values.
func NewReader(values Values, config Config, logger *slog.Logger) *Reader {
	return &Reader{values: values, config: config, logger: common.OrDefault(logger)}
}

// Entries reads every row of the management tab. The first row names the
// columns.
func (r *Reader) Entries(ctx context.Context) ([]model.WatchlistEntry, error) {
	rows, err := r.values.Get(ctx, r.config.SpreadsheetID, sheetRange(r.config.ManageSheet))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", common.ErrMissingSource, r.config.ManageSheet, err)
	}

	g := make(grid.Grid, len(rows))
	for i, row := range rows {
		g[i] = grid.Row(row)
	}

	entries, err := watchlist.FromGrid(g)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Fetched watch-list from spreadsheet",
		"sheet", r.config.ManageSheet,
		"entries", len(entries))
	return entries, nil
}

// quoteSheet quotes title for A1 notation, doubling embedded quotes.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func sheetRange(title string) string {
	return quoteSheet(title) + "!A:Z"
}
