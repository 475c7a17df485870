package keepbook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CarryForward accumulates portfolio totals across the points of one
// history request, reusing the last known unit value of an asset when its
// conversion to the reporting currency is temporarily unavailable. This
// tolerates transient missing-price gaps without corrupting the series.
//
// The accumulator is stateful across points in strict time order; it must
// not be shared between requests.
type CarryForward struct {
	unitValues map[string]decimal.Decimal // asset -> last known value of one unit
}

// NewCarryForward returns an empty accumulator.
func NewCarryForward() *CarryForward {
	return &CarryForward{unitValues: make(map[string]decimal.Decimal)}
}

// Total computes the total value of a per-asset breakdown.
//
// For each asset: a present ValueInBase is added directly, and the unit
// value ValueInBase/TotalAmount is recorded for later gaps (unless the
// amount is zero). A zero amount contributes zero regardless of history.
// A nonzero amount with no conversion contributes the last recorded unit
// value times the amount, or zero when no unit value was ever recorded.
//
// Any malformed decimal fails the whole point: no unit value recorded on
// this call survives, and the caller must fall back to whatever total the
// valuation snapshot itself reports.
func (c *CarryForward) Total(assets []AssetValuation) (decimal.Decimal, error) {
	total := decimal.Zero
	recorded := make(map[string]decimal.Decimal)

	for _, a := range assets {
		amount, err := ParseDecimal(a.TotalAmount)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("asset %q amount: %w", a.Asset, err)
		}

		switch {
		case a.ValueInBase != nil:
			value, err := ParseDecimal(*a.ValueInBase)
			if err != nil {
				return decimal.Decimal{}, fmt.Errorf("asset %q value: %w", a.Asset, err)
			}
			total = total.Add(value)
			if !amount.IsZero() {
				recorded[a.Asset] = value.Div(amount)
			}
		case amount.IsZero():
			// Nothing held, nothing to value.
		default:
			// Conversion is missing; carry the last known unit value forward.
			if unit, ok := c.unitValues[a.Asset]; ok {
				total = total.Add(unit.Mul(amount))
			}
			// No prior unit value: the asset contributes zero rather than
			// aborting the series.
		}
	}

	for asset, unit := range recorded {
		c.unitValues[asset] = unit
	}
	return total, nil
}
