package keepbook

import (
	"encoding/json"
	"fmt"
)

// ChangeTrigger identifies why a change point exists: a balance line, a
// price quote, or an FX rate was recorded at that instant. It is a sealed
// sum type; a type switch over BalanceTrigger, PriceTrigger and FxTrigger
// is exhaustive.
type ChangeTrigger interface {
	// Label returns the human-readable form used in history reports.
	Label() string
	trigger()
}

// BalanceTrigger marks a balance line of an account snapshot.
type BalanceTrigger struct {
	Account string
	Asset   string
}

// PriceTrigger marks a historical price of an asset.
type PriceTrigger struct {
	AssetID string
}

// FxTrigger marks an exchange rate between two currencies.
type FxTrigger struct {
	Base  string
	Quote string
}

func (t BalanceTrigger) Label() string {
	// Assets can carry arbitrary characters, so the asset part is JSON-quoted.
	asset, _ := json.Marshal(t.Asset)
	return fmt.Sprintf("balance:%s:%s", t.Account, asset)
}

func (t PriceTrigger) Label() string { return "price:" + t.AssetID }

func (t FxTrigger) Label() string { return fmt.Sprintf("fx:%s/%s", t.Base, t.Quote) }

func (BalanceTrigger) trigger() {}
func (PriceTrigger) trigger()   {}
func (FxTrigger) trigger()      {}
