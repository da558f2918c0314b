// Package fee turns a matched report row into cost figures.
package fee

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/etfsave/internal/grid"
	"github.com/Veraticus/etfsave/internal/header"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/numeric"
)

// RealCostPlaces is the rounding precision of the real cost figure.
const RealCostPlaces = 4

// Costs are the fee components of one fund, as percentage rates.
type Costs struct {
	TotalFee    float64
	OtherCost   float64
	TradingCost float64
	RealCost    float64
}

// TER is the total expense ratio: total fee plus other costs.
func (c Costs) TER() float64 {
	return decimal.NewFromFloat(c.TotalFee).Add(decimal.NewFromFloat(c.OtherCost)).InexactFloat64()
}

// Compute reads the fee components of row. An unbound role or an unreadable
// cell contributes zero.
func Compute(row grid.Row, t header.Table) Costs {
	c := Costs{
		TotalFee:    component(row, t, header.RoleTotalFee),
		OtherCost:   component(row, t, header.RoleOtherCost),
		TradingCost: component(row, t, header.RoleTradingCost),
	}
	c.RealCost = RealCost(c.TotalFee, c.OtherCost, c.TradingCost)
	return c
}

// RealCost sums the components in decimal arithmetic and rounds to four
// places, half away from zero.
func RealCost(total, other, trading float64) float64 {
	sum := decimal.NewFromFloat(total).
		Add(decimal.NewFromFloat(other)).
		Add(decimal.NewFromFloat(trading))
	return sum.Round(RealCostPlaces).InexactFloat64()
}

func component(row grid.Row, t header.Table, role header.Role) float64 {
	v, ok := t.Cell(row, role)
	if !ok {
		return 0
	}
	return numeric.ToNumber(v)
}

// Record builds the output record for entry from its costs.
func Record(entry model.WatchlistEntry, c Costs) model.OutputRecord {
	return model.OutputRecord{
		Category:    entry.Category,
		TickerCode:  entry.TickerCode,
		TickerName:  entry.TickerName,
		TotalFee:    c.TotalFee,
		OtherCost:   c.OtherCost,
		TradingCost: c.TradingCost,
		RealCost:    c.RealCost,
	}
}
