package keepbook

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// naSentinel is the defined result of a percentage change whose reference
// value is exactly zero; division by zero is not an error here.
const naSentinel = "N/A"

// System ties the engine to its collaborators. It holds no mutable state:
// every history request builds its own collector and accumulator, so a
// System is safe for concurrent use.
type System struct {
	Storage Storage
	Market  MarketDataStore
	Valuer  Valuer
	Clock   Clock
}

// NewSystem creates a system over the given collaborators, on the system
// clock.
func NewSystem(storage Storage, market MarketDataStore, valuer Valuer) *System {
	return &System{Storage: storage, Market: market, Valuer: valuer, Clock: SystemClock{}}
}

// HistoryRequest describes one history computation.
type HistoryRequest struct {
	Currency      string           // reporting currency
	StartDate     string           // inclusive ISO-8601 date, "" for unbounded
	EndDate       string           // inclusive ISO-8601 date, "" for unbounded
	Granularity   Granularity      // target cadence
	Strategy      CoalesceStrategy // representative point per bucket
	IncludePrices bool             // also derive points from price history
	Precision     int32            // rounding precision handed to the valuer
}

// HistoryPoint is one entry of the computed series. All decimal fields are
// exact strings, never floating-point numbers, to avoid representation
// drift across re-serialization.
type HistoryPoint struct {
	Time             time.Time `json:"time"`
	Date             string    `json:"date"`
	TotalValue       string    `json:"totalValue"`
	PercentageChange string    `json:"percentageChangeFromPrevious"`
	ChangeTriggers   []string  `json:"changeTriggers"`
}

// HistorySummary compares the first and last points of a series.
type HistorySummary struct {
	InitialValue     string `json:"initialValue"`
	FinalValue       string `json:"finalValue"`
	AbsoluteChange   string `json:"absoluteChange"`
	PercentageChange string `json:"percentageChange"`
}

// HistoryResponse is the pure output of a history request, recomputed per
// request.
type HistoryResponse struct {
	Currency    string          `json:"currency"`
	StartDate   string          `json:"startDate,omitempty"`
	EndDate     string          `json:"endDate,omitempty"`
	Granularity string          `json:"granularity"`
	Points      []HistoryPoint  `json:"points"`
	Summary     *HistorySummary `json:"summary,omitempty"`
}

// History computes the total-value time series of the portfolio over the
// requested range, currency and granularity.
//
// Valuation is strictly sequential across points: each point's
// carry-forward state depends on the unit values recorded at the previous
// point.
func (s *System) History(ctx context.Context, req HistoryRequest) (*HistoryResponse, error) {
	collector := NewCollector(s.Storage, s.Market)
	points, err := collector.Collect(ctx, req.IncludePrices)
	if err != nil {
		return nil, err
	}
	points = FilterByDateRange(points, req.StartDate, req.EndDate)
	points = FilterByGranularity(points, req.Granularity, req.Strategy)

	response := &HistoryResponse{
		Currency:    req.Currency,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: req.Granularity.String(),
		Points:      make([]HistoryPoint, 0, len(points)),
	}

	carry := NewCarryForward()
	totals := make([]decimal.Decimal, 0, len(points))
	for _, point := range points {
		valuation, err := s.Valuer.Valuate(ctx, point.Date(), req.Currency, req.Precision, true)
		if err != nil {
			return nil, fmt.Errorf("valuation as of %s: %w", point.Date(), err)
		}

		total, err := carry.Total(valuation.Assets)
		if err != nil {
			// Carry-forward failed for this point; fall back to the total
			// the valuation snapshot itself reports.
			total, err = ParseDecimal(valuation.TotalValue)
			if err != nil {
				return nil, fmt.Errorf("valuation as of %s: %w", point.Date(), err)
			}
		}

		change := naSentinel
		if n := len(totals); n > 0 && !totals[n-1].IsZero() {
			change = percentageChange(totals[n-1], total)
		}
		totals = append(totals, total)

		labels := make([]string, 0, len(point.Triggers))
		for _, trigger := range point.Triggers {
			labels = append(labels, trigger.Label())
		}

		response.Points = append(response.Points, HistoryPoint{
			Time:             point.Time,
			Date:             point.Date().String(),
			TotalValue:       DecString(total),
			PercentageChange: change,
			ChangeTriggers:   labels,
		})
	}

	if len(totals) >= 2 {
		initial, final := totals[0], totals[len(totals)-1]
		change := naSentinel
		if !initial.IsZero() {
			change = percentageChange(initial, final)
		}
		response.Summary = &HistorySummary{
			InitialValue:     DecString(initial),
			FinalValue:       DecString(final),
			AbsoluteChange:   DecString(final.Sub(initial)),
			PercentageChange: change,
		}
	}

	return response, nil
}

// percentageChange formats (cur-prev)/prev*100 rounded to 2 decimal
// places half-up. The reference must be nonzero.
func percentageChange(prev, cur decimal.Decimal) string {
	hundred := decimal.NewFromInt(100)
	return DecStringRounded(cur.Sub(prev).Div(prev).Mul(hundred), 2)
}
