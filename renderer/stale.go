package renderer

import (
	"time"

	"github.com/colonelpanic8/keepbook"
)

// AccountStaleness is one row of the staleness report.
type AccountStaleness struct {
	Account    string
	Connection string
	LastSync   string
	Age        string
	Threshold  string
	Verdict    string
}

// NewAccountStaleness builds a report row from a staleness verdict.
func NewAccountStaleness(account keepbook.Account, lastSync *time.Time, r keepbook.StalenessResult) AccountStaleness {
	row := AccountStaleness{
		Account:    account.ID,
		Connection: account.Connection,
		LastSync:   "never",
		Age:        "-",
		Threshold:  r.Threshold.String(),
		Verdict:    "fresh",
	}
	if lastSync != nil {
		row.LastSync = lastSync.UTC().Format(time.RFC3339)
	}
	if r.Age != nil {
		row.Age = r.Age.Round(time.Second).String()
	}
	if r.IsStale {
		row.Verdict = "STALE"
	}
	return row
}

// RenderStaleness renders the staleness report to a markdown string.
func RenderStaleness(rows []AccountStaleness) string {
	return renderTemplate("stale.md", rows)
}
