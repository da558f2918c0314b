package matcher

import (
	"strings"

	"github.com/Veraticus/etfsave/internal/header"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/watchlist"
)

// Listing is what the report knows about one exchange ticker.
type Listing struct {
	StandardCode string
	FundName     string
}

// Suggestion fills in watch-list fields the report can supply.
type Suggestion struct {
	Entry model.WatchlistEntry
	Listing
}

// ListingsByTicker indexes the report rows whose standard code is a Korean
// ISIN by the ticker embedded in it. The first row per ticker wins.
func ListingsByTicker(t header.Table) map[string]Listing {
	listings := make(map[string]Listing)

	codeCol, ok := t.Column(header.RoleStandardCode)
	if !ok {
		return listings
	}
	nameCol, hasName := t.Column(header.RoleFundName)

	for _, row := range t.Rows() {
		code := strings.TrimSpace(row.Text(codeCol.Index))
		ticker := watchlist.TickerFromISIN(code)
		if ticker == "" {
			continue
		}
		if _, seen := listings[ticker]; seen {
			continue
		}
		l := Listing{StandardCode: code}
		if hasName {
			l.FundName = strings.TrimSpace(row.Text(nameCol.Index))
		}
		listings[ticker] = l
	}

	return listings
}

// Suggest returns the entries missing a standard code or fund name that the
// report can complete, in entry order. Existing values are never replaced.
func Suggest(t header.Table, entries []model.WatchlistEntry) []Suggestion {
	listings := ListingsByTicker(t)

	var out []Suggestion
	for _, e := range entries {
		l, ok := listings[strings.TrimSpace(e.TickerCode)]
		if !ok {
			continue
		}

		var s Suggestion
		s.Entry = e
		if strings.TrimSpace(e.StandardCode) == "" {
			s.StandardCode = l.StandardCode
		}
		if strings.TrimSpace(e.FundName) == "" {
			s.FundName = l.FundName
		}
		if s.StandardCode == "" && s.FundName == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
