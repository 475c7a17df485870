package renderer

import (
	"github.com/colonelpanic8/keepbook"
)

// History is the render model of a history report.
type History struct {
	*keepbook.HistoryResponse
	// Display holds the points' totals formatted with currency conventions.
	Display []HistoryRow
}

// HistoryRow pairs a history point with its display total.
type HistoryRow struct {
	keepbook.HistoryPoint
	Total string
}

// RenderHistory renders a history response to a markdown string.
func RenderHistory(r *keepbook.HistoryResponse) string {
	h := History{HistoryResponse: r}
	for _, p := range r.Points {
		h.Display = append(h.Display, HistoryRow{HistoryPoint: p, Total: displayAmount(p.TotalValue, r.Currency)})
	}
	return renderTemplate("history.md", h)
}

// displayAmount formats an exact decimal string with the currency's
// conventions, falling back to the raw string for unknown currencies.
func displayAmount(amount, currency string) string {
	m, err := keepbook.ParseMoney(amount, currency)
	if err != nil || m.String() == "" {
		return amount + " " + currency
	}
	return m.String()
}
