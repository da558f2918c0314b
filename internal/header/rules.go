// Package header locates the header row and the semantic columns of a fee
// disclosure grid.
//
// Column discovery is declarative: each Rule names a role and the tokens a
// normalized header must contain. Rules run in priority order and the first
// matching column, scanning left to right, wins. A role bound by an earlier
// rule is never rebound. Nothing else disambiguates, so the rule table is the
// place to look when a column is picked wrongly.
package header

import (
	"sort"
	"strings"
)

// Role is a semantic column the pipeline reads.
type Role string

// Semantic column roles.
const (
	RoleStandardCode Role = "standard_code"
	RoleTotalFee     Role = "total_fee"
	RoleOtherCost    Role = "other_cost"
	RoleTradingCost  Role = "trading_cost"
	RoleFundName     Role = "fund_name"
)

// Roles lists every role in reporting order.
var Roles = []Role{
	RoleStandardCode,
	RoleTotalFee,
	RoleOtherCost,
	RoleTradingCost,
	RoleFundName,
}

// Header tokens used by the KOFIA fee comparison report.
const (
	TokenStandardCode = "표준코드"
	TokenTotal        = "합계"
	TokenTotalSuffix  = "(A)"
	TokenTotalFee     = "총보수"
	TokenOther        = "기타"
	TokenCost         = "비용"
	TokenTrading      = "매매"
	TokenCommission   = "수수료"
	TokenFundName     = "펀드명"
)

// Rule binds Role to the first header containing every token.
type Rule struct {
	Role     Role
	Tokens   []string
	Priority int
}

// Matches reports whether the normalized header contains all tokens.
func (r Rule) Matches(header string) bool {
	if len(r.Tokens) == 0 || header == "" {
		return false
	}
	for _, tok := range r.Tokens {
		if !strings.Contains(header, tok) {
			return false
		}
	}
	return true
}

// DefaultRules is the column table for the KOFIA report. The single-token
// 총보수 rule only applies when no 합계(A) column exists.
var DefaultRules = []Rule{
	{Role: RoleStandardCode, Tokens: []string{TokenStandardCode}, Priority: 10},
	{Role: RoleTotalFee, Tokens: []string{TokenTotal, TokenTotalSuffix}, Priority: 20},
	{Role: RoleTotalFee, Tokens: []string{TokenTotalFee}, Priority: 21},
	{Role: RoleOtherCost, Tokens: []string{TokenOther, TokenCost}, Priority: 30},
	{Role: RoleTradingCost, Tokens: []string{TokenTrading, TokenCommission}, Priority: 40},
	{Role: RoleFundName, Tokens: []string{TokenFundName}, Priority: 50},
}

// sortRules returns a copy of rules ordered by priority, keeping the given
// order for equal priorities.
func sortRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Strategy records how the header row was chosen.
type Strategy string

// Header row strategies, in the order they are tried.
const (
	StrategyTotalMarker     Strategy = "total_fee_marker"
	StrategyTradingFallback Strategy = "trading_commission"
	StrategyDefault         Strategy = "default_row"
)

// rowMarker decides whether a row of cell texts is the header row.
type rowMarker struct {
	strategy Strategy
	match    func(cells []string) bool
}

// headerMarkers are tried in order over the scanned rows.
var headerMarkers = []rowMarker{
	{
		// 합계 and (A) may sit in one cell ("합계(A)") or in two.
		strategy: StrategyTotalMarker,
		match: func(cells []string) bool {
			return anyContains(cells, TokenTotalSuffix) && anyContains(cells, TokenTotal)
		},
	},
	{
		strategy: StrategyTradingFallback,
		match: func(cells []string) bool {
			for _, c := range cells {
				if strings.Contains(c, TokenTrading) && strings.Contains(c, TokenCommission) {
					return true
				}
			}
			return false
		},
	},
}

func anyContains(cells []string, token string) bool {
	for _, c := range cells {
		if strings.Contains(c, token) {
			return true
		}
	}
	return false
}
