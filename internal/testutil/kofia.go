// Package testutil provides fixture builders shared by package tests.
package testutil

import (
	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/model"
)

// KOFIAHeaders is the detail header row of the KOFIA fee comparison report,
// including the line breaks the portal embeds in long labels.
var KOFIAHeaders = []string{
	"펀드명",
	"운용사",
	"표준코드",
	"설정일",
	"운용\n보수",
	"판매\n보수",
	"합계(A)",
	"기타비용(B)",
	"TER\n(A+B)",
	"선취\n수수료",
	"매매·중개\n수수료율(D)",
}

// Fund is one data row of a KOFIA grid.
type Fund struct {
	Name         string
	StandardCode string
	TotalFee     string
	OtherCost    string
	TradingCost  string
}

// GridBuilder assembles KOFIA-shaped grids.
type GridBuilder struct {
	preamble []grid.Row
	headers  []string
	funds    []Fund
}

// NewGridBuilder starts a grid with the portal's title rows and headers.
func NewGridBuilder() *GridBuilder {
	return &GridBuilder{
		preamble: []grid.Row{
			{"펀드별 보수비용비교"},
			{},
			{"구분", nil, nil, nil, "보수", nil, nil, "비용", nil, "수수료"},
		},
		headers: KOFIAHeaders,
	}
}

// WithPreamble replaces the rows placed above the header row.
func (b *GridBuilder) WithPreamble(rows ...grid.Row) *GridBuilder {
	b.preamble = rows
	return b
}

// WithHeaders replaces the header row.
func (b *GridBuilder) WithHeaders(headers ...string) *GridBuilder {
	b.headers = headers
	return b
}

// WithFund appends a data row.
func (b *GridBuilder) WithFund(f Fund) *GridBuilder {
	b.funds = append(b.funds, f)
	return b
}

// HeaderRow is the index the header row will have in the built grid.
func (b *GridBuilder) HeaderRow() int {
	return len(b.preamble)
}

// Build renders the grid. Fund values are placed under the header that
// contains the matching label, so custom headers still line up.
func (b *GridBuilder) Build() grid.Grid {
	g := make(grid.Grid, 0, len(b.preamble)+1+len(b.funds))
	g = append(g, b.preamble...)

	header := make(grid.Row, len(b.headers))
	for i, h := range b.headers {
		header[i] = h
	}
	g = append(g, header)

	for _, f := range b.funds {
		row := make(grid.Row, len(b.headers))
		for i, h := range b.headers {
			switch h {
			case "펀드명":
				row[i] = f.Name
			case "표준코드":
				row[i] = f.StandardCode
			case "합계(A)", "총보수":
				row[i] = f.TotalFee
			case "기타비용(B)":
				row[i] = f.OtherCost
			case "매매·중개\n수수료율(D)", "매매중개수수료":
				row[i] = f.TradingCost
			}
		}
		g = append(g, row)
	}

	return g
}

// Entry builds a watch-list entry.
func Entry(tickerCode, tickerName, standardCode string) model.WatchlistEntry {
	return model.WatchlistEntry{
		Category:     "해외주식형",
		TickerCode:   tickerCode,
		TickerName:   tickerName,
		StandardCode: standardCode,
	}
}

// Record builds an output record with a precomputed real cost.
func Record(code, name string, total, other, trading, real float64) model.OutputRecord {
	return model.OutputRecord{
		Category:    "해외주식형",
		TickerCode:  code,
		TickerName:  name,
		TotalFee:    total,
		OtherCost:   other,
		TradingCost: trading,
		RealCost:    real,
	}
}

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 {
	return &f
}
