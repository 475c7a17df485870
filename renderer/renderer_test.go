package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/colonelpanic8/keepbook"
)

func TestRenderHistory(t *testing.T) {
	r := &keepbook.HistoryResponse{
		Currency:    "USD",
		StartDate:   "2025-01-01",
		Granularity: "daily",
		Points: []keepbook.HistoryPoint{
			{
				Date:             "2025-01-01",
				TotalValue:       "100",
				PercentageChange: "N/A",
				ChangeTriggers:   []string{`balance:broker:"AAPL"`},
			},
			{
				Date:             "2025-01-02",
				TotalValue:       "150",
				PercentageChange: "50.00",
				ChangeTriggers:   []string{"price:AAPL", `balance:broker:"USD"`},
			},
		},
		Summary: &keepbook.HistorySummary{
			InitialValue:     "100",
			FinalValue:       "150",
			AbsoluteChange:   "50",
			PercentageChange: "50.00",
		},
	}

	doc := RenderHistory(r)
	for _, want := range []string{
		"# Portfolio History (USD)",
		"From 2025-01-01",
		"daily granularity",
		"| 2025-01-01 | $100.00 | N/A |",
		"| 2025-01-02 | $150.00 | 50.00 |",
		`price:AAPL<br>balance:broker:"USD"`,
		"## Summary",
		"| 100 | 150 | 50 | 50.00 |",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %q in:\n%s", want, doc)
		}
	}
}

func TestRenderHistoryUnknownCurrency(t *testing.T) {
	r := &keepbook.HistoryResponse{
		Currency:    "SHELLS",
		Granularity: "full",
		Points: []keepbook.HistoryPoint{
			{Date: "2025-01-01", TotalValue: "12.5", PercentageChange: "N/A"},
		},
	}
	doc := RenderHistory(r)
	if !strings.Contains(doc, "12.5 SHELLS") {
		t.Errorf("unknown currency must fall back to the raw amount:\n%s", doc)
	}
}

func TestRenderStaleness(t *testing.T) {
	lastSync := time.Date(2025, time.May, 30, 10, 0, 0, 0, time.UTC)
	age := 48 * time.Hour
	rows := []AccountStaleness{
		NewAccountStaleness(
			keepbook.Account{ID: "broker", Connection: "snaptrade"},
			&lastSync,
			keepbook.StalenessResult{IsStale: true, Age: &age, Threshold: 24 * time.Hour},
		),
		NewAccountStaleness(
			keepbook.Account{ID: "bank"},
			nil,
			keepbook.StalenessResult{IsStale: true, Threshold: 24 * time.Hour},
		),
	}

	doc := RenderStaleness(rows)
	for _, want := range []string{
		"# Balance Data Freshness",
		"| broker | snaptrade | 2025-05-30T10:00:00Z | 48h0m0s | 24h0m0s | STALE |",
		"| bank |  | never | - | 24h0m0s | STALE |",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %q in:\n%s", want, doc)
		}
	}
}
