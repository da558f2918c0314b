// Package watchlist loads the funds the operator wants tracked.
package watchlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/model"
)

// Source yields watch-list entries.
type Source interface {
	Entries(ctx context.Context) ([]model.WatchlistEntry, error)
}

// isinPrefix marks a Korean listed equity ISIN; the six characters after it
// are the exchange ticker.
const isinPrefix = "KR7"

// TickerFromISIN derives the six-digit ticker from a Korean ISIN, returning
// "" when isin is not one.
func TickerFromISIN(isin string) string {
	isin = strings.TrimSpace(isin)
	if len(isin) < len(isinPrefix)+6 || !strings.HasPrefix(isin, isinPrefix) {
		return ""
	}
	return isin[len(isinPrefix) : len(isinPrefix)+6]
}

// placeholder values written by the list scrapers when a field is unknown.
func isPlaceholder(s string) bool {
	return s == "" || strings.EqualFold(s, "N/A")
}

// tickerDigits is the width of a KRX ticker. Sheets that store tickers as
// numbers drop the leading zeros.
const tickerDigits = 6

func padTicker(code string) string {
	if code == "" || len(code) >= tickerDigits {
		return code
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	return strings.Repeat("0", tickerDigits-len(code)) + code
}

// FromRecords builds entries from header-keyed records. Ticker codes are
// derived from the standard code when missing, and blank rows are skipped.
func FromRecords(records []map[string]any) []model.WatchlistEntry {
	entries := make([]model.WatchlistEntry, 0, len(records))
	for _, rec := range records {
		text := func(key string) string {
			return strings.TrimSpace(grid.CellText(rec[key]))
		}

		entry := model.WatchlistEntry{
			Category:     text(model.FieldCategory),
			TickerCode:   text(model.FieldTickerCode),
			TickerName:   text(model.FieldTickerName),
			StandardCode: text(model.FieldStandardCode),
			FundName:     text(model.FieldFundName),
		}
		if entry.TickerCode == "" && entry.TickerName == "" && entry.StandardCode == "" {
			continue
		}
		if entry.Category == "" {
			entry.Category = model.DefaultCategory
		}
		if isPlaceholder(entry.TickerCode) {
			entry.TickerCode = TickerFromISIN(entry.StandardCode)
		}
		entry.TickerCode = padTicker(entry.TickerCode)
		if isPlaceholder(entry.StandardCode) {
			entry.StandardCode = ""
		}
		entries = append(entries, entry)
	}
	return entries
}

// FromGrid builds entries from a grid whose first row names the columns.
func FromGrid(g grid.Grid) ([]model.WatchlistEntry, error) {
	if len(g) == 0 {
		return nil, fmt.Errorf("%w: watch-list has no header row", common.ErrMissingSource)
	}

	headers := g[0].Texts()
	known := false
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == model.FieldStandardCode || headers[i] == model.FieldTickerCode {
			known = true
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: watch-list header has neither %s nor %s",
			common.ErrUnresolvedColumn, model.FieldStandardCode, model.FieldTickerCode)
	}

	records := make([]map[string]any, 0, len(g)-1)
	for _, row := range g[1:] {
		rec := make(map[string]any, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			rec[h] = row.Cell(i)
		}
		records = append(records, rec)
	}
	return FromRecords(records), nil
}
