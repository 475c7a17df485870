package keepbook

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// This file defines the records exchanged with the persistence and market
// data collaborators, and the contracts the engine consumes. The engine
// only ever reads collaborator-owned state; it never mutates it.

// Account is a portfolio account as known to the store.
type Account struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Connection string `json:"connection,omitempty"` // upstream source this account syncs from
}

// AccountConfig carries per-account settings.
type AccountConfig struct {
	// ExcludeFromPortfolio removes the account from history and valuation.
	ExcludeFromPortfolio bool `json:"excludeFromPortfolio,omitempty"`
	// StalenessThreshold overrides the connection and global thresholds.
	StalenessThreshold *time.Duration `json:"stalenessThreshold,omitempty"`
}

// ConnectionConfig carries per-connection settings shared by every account
// synced from the same upstream source.
type ConnectionConfig struct {
	StalenessThreshold *time.Duration `json:"stalenessThreshold,omitempty"`
}

// AssetBalance is one balance line of a snapshot. Amount is an exact
// decimal string.
type AssetBalance struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// BalanceSnapshot is the full asset breakdown of an account at an instant.
// Snapshots are append-only and never mutated in place.
type BalanceSnapshot struct {
	Time     time.Time      `json:"time"`
	Balances []AssetBalance `json:"balances"`
}

// Kinds of price and rate points, keyed with the point's subject and date.
const (
	KindClose = "close" // end-of-day closing value
	KindSpot  = "spot"  // latest traded value at fetch time
)

// PricePoint is an immutable price fact for an asset on a given date.
// A later put for the same (asset, date, kind) overwrites it.
type PricePoint struct {
	AssetID       string    `json:"asset"`
	On            Date      `json:"on"`
	Time          time.Time `json:"time,omitempty"`
	Price         string    `json:"price"`
	QuoteCurrency string    `json:"quoteCurrency"`
	Kind          string    `json:"kind"`
	Source        string    `json:"source,omitempty"`
}

// FxRatePoint is an immutable exchange-rate fact for a currency pair on a
// given date. Rate is the value of 1 unit of Base expressed in Quote.
type FxRatePoint struct {
	Base   string    `json:"base"`
	Quote  string    `json:"quote"`
	On     Date      `json:"on"`
	Time   time.Time `json:"time,omitempty"`
	Rate   string    `json:"rate"`
	Kind   string    `json:"kind"`
	Source string    `json:"source,omitempty"`
}

// Transaction is an ingestion-time financial record. SynchronizerData is a
// free-form bag filled by the upstream connector; the deduplicator mines it
// for alias keys but never mutates ID.
type Transaction struct {
	ID               string            `json:"id"`
	Amount           string            `json:"amount"`
	Asset            string            `json:"asset"`
	Description      string            `json:"description,omitempty"`
	Time             time.Time         `json:"time"`
	SynchronizerData map[string]string `json:"synchronizerData,omitempty"`
}

// NewTransactionID backfills an identifier for records that arrive without
// one, so every transaction can participate in alias matching.
func NewTransactionID() string { return "tx-" + uuid.NewString() }

// Storage is the persistence collaborator: wherever accounts and their
// balance snapshots physically live.
type Storage interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountConfig(ctx context.Context, id string) (AccountConfig, error)
	// BalanceSnapshots returns the account's snapshots in chronological order.
	BalanceSnapshots(ctx context.Context, accountID string) ([]BalanceSnapshot, error)
}

// MarketDataStore is the market data collaborator holding price and FX
// rate history.
type MarketDataStore interface {
	AllPrices(ctx context.Context, assetID string) ([]PricePoint, error)
	Price(ctx context.Context, assetID string, on Date) (PricePoint, bool, error)
	FxRate(ctx context.Context, base, quote string, on Date) (FxRatePoint, bool, error)
	PutPrice(ctx context.Context, p PricePoint) error
	PutFxRate(ctx context.Context, r FxRatePoint) error
}

// AssetValuation is the per-asset line of a grouped valuation.
// ValueInBase is the already-converted value in the reporting currency,
// or nil when no conversion chain was available.
type AssetValuation struct {
	Asset       string  `json:"asset"`
	TotalAmount string  `json:"totalAmount"`
	ValueInBase *string `json:"valueInBase,omitempty"`
}

// Valuation is a point-in-time portfolio valuation produced by a Valuer.
type Valuation struct {
	On         Date             `json:"on"`
	Currency   string           `json:"currency"`
	TotalValue string           `json:"totalValue"`
	Assets     []AssetValuation `json:"assets,omitempty"`
}

// Valuer computes a full portfolio valuation as of a date. When byAsset is
// true the valuation carries a per-asset breakdown.
type Valuer interface {
	Valuate(ctx context.Context, on Date, currency string, precision int32, byAsset bool) (Valuation, error)
}

// Clock abstracts time for reproducible tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
