// Package model defines the core data types for fee reconciliation.
package model

// Published data.json keys. The front-end reads these names directly.
const (
	FieldCategory    = "구분"
	FieldTickerCode  = "종목코드"
	FieldTickerName  = "종목명"
	FieldTotalFee    = "총보수"
	FieldOtherCost   = "기타비용"
	FieldTradingCost = "매매중개수수료"
	FieldRealCost    = "실부담비용"

	// FieldStandardCode and FieldFundName only appear in watch-list sources.
	FieldStandardCode = "표준코드"
	FieldFundName     = "펀드명"
)

// DefaultCategory is used when a watch-list source has no category column.
const DefaultCategory = "기타"

// TrackedFields lists the fee fields compared between snapshots, in
// declaration order.
var TrackedFields = []string{
	FieldTotalFee,
	FieldOtherCost,
	FieldTradingCost,
	FieldRealCost,
}

// WatchlistEntry is one fund the operator wants tracked.
type WatchlistEntry struct {
	Category     string `json:"구분"`
	TickerCode   string `json:"종목코드"`
	TickerName   string `json:"종목명"`
	StandardCode string `json:"표준코드"`
	FundName     string `json:"펀드명,omitempty"`
}

// OutputRecord is the reconciled cost breakdown for one watch-list entry.
type OutputRecord struct {
	Category    string  `json:"구분"`
	TickerCode  string  `json:"종목코드"`
	TickerName  string  `json:"종목명"`
	TotalFee    float64 `json:"총보수"`
	OtherCost   float64 `json:"기타비용"`
	TradingCost float64 `json:"매매중개수수료"`
	RealCost    float64 `json:"실부담비용"`
}

// Row returns the record as a generic snapshot row keyed by the published
// field names.
func (r OutputRecord) Row() map[string]any {
	return map[string]any{
		FieldCategory:    r.Category,
		FieldTickerCode:  r.TickerCode,
		FieldTickerName:  r.TickerName,
		FieldTotalFee:    r.TotalFee,
		FieldOtherCost:   r.OtherCost,
		FieldTradingCost: r.TradingCost,
		FieldRealCost:    r.RealCost,
	}
}

// Snapshot is one run's reconciled output, in watch-list order.
type Snapshot []OutputRecord

// Rows converts the snapshot to generic rows for diffing.
func (s Snapshot) Rows() []map[string]any {
	rows := make([]map[string]any, 0, len(s))
	for _, r := range s {
		rows = append(rows, r.Row())
	}
	return rows
}
