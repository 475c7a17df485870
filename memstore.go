package keepbook

import (
	"context"
	"fmt"
	"sort"
)

// MemStore is an in-memory Storage and MarketDataStore. It is the loaded
// representation of the file store, and the collaborator of choice in
// tests. The zero value is not usable; use NewMemStore.
type MemStore struct {
	accounts    []Account // in insertion order
	configs     map[string]AccountConfig
	connections map[string]ConnectionConfig
	snapshots   map[string][]BalanceSnapshot

	prices map[string]map[priceKey]PricePoint  // asset -> (date, kind) -> point
	fx     map[string]map[priceKey]FxRatePoint // "base/quote" -> (date, kind) -> point

	transactions []Transaction
}

type priceKey struct {
	on   string // ISO date
	kind string
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		configs:     make(map[string]AccountConfig),
		connections: make(map[string]ConnectionConfig),
		snapshots:   make(map[string][]BalanceSnapshot),
		prices:      make(map[string]map[priceKey]PricePoint),
		fx:          make(map[string]map[priceKey]FxRatePoint),
	}
}

// AddAccount registers an account and its configuration.
func (m *MemStore) AddAccount(account Account, cfg AccountConfig) {
	m.accounts = append(m.accounts, account)
	m.configs[account.ID] = cfg
}

// SetConnectionConfig registers the settings of an upstream connection.
func (m *MemStore) SetConnectionConfig(connection string, cfg ConnectionConfig) {
	m.connections[connection] = cfg
}

// ConnectionConfig returns the settings of an upstream connection, zero
// when none were registered.
func (m *MemStore) ConnectionConfig(connection string) ConnectionConfig {
	return m.connections[connection]
}

// AppendSnapshot appends a balance snapshot to an account's history.
// Snapshots are kept in chronological order.
func (m *MemStore) AppendSnapshot(accountID string, snapshot BalanceSnapshot) {
	snapshots := append(m.snapshots[accountID], snapshot)
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Time.Before(snapshots[j].Time)
	})
	m.snapshots[accountID] = snapshots
}

// AddTransactions appends ingested transactions, backfilling missing ids.
func (m *MemStore) AddTransactions(txs ...Transaction) {
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = NewTransactionID()
		}
		m.transactions = append(m.transactions, tx)
	}
}

// Transactions returns the stored transactions in ingestion order.
func (m *MemStore) Transactions() []Transaction {
	return append([]Transaction(nil), m.transactions...)
}

// ReplaceTransactions swaps the stored transactions, typically after a
// deduplication pass.
func (m *MemStore) ReplaceTransactions(txs []Transaction) {
	m.transactions = append([]Transaction(nil), txs...)
}

// --- Storage ---

func (m *MemStore) ListAccounts(_ context.Context) ([]Account, error) {
	return append([]Account(nil), m.accounts...), nil
}

func (m *MemStore) GetAccount(_ context.Context, id string) (Account, error) {
	for _, account := range m.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return Account{}, fmt.Errorf("unknown account %q", id)
}

func (m *MemStore) GetAccountConfig(_ context.Context, id string) (AccountConfig, error) {
	// Accounts without explicit settings get the zero config.
	return m.configs[id], nil
}

func (m *MemStore) BalanceSnapshots(_ context.Context, accountID string) ([]BalanceSnapshot, error) {
	return append([]BalanceSnapshot(nil), m.snapshots[accountID]...), nil
}

// --- MarketDataStore ---

func (m *MemStore) AllPrices(_ context.Context, assetID string) ([]PricePoint, error) {
	points := make([]PricePoint, 0, len(m.prices[assetID]))
	for _, p := range m.prices[assetID] {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].On != points[j].On {
			return points[i].On.Before(points[j].On)
		}
		return points[i].Kind < points[j].Kind
	})
	return points, nil
}

func (m *MemStore) Price(_ context.Context, assetID string, on Date) (PricePoint, bool, error) {
	for _, kind := range []string{KindClose, KindSpot} {
		if p, ok := m.prices[assetID][priceKey{on.String(), kind}]; ok {
			return p, true, nil
		}
	}
	return PricePoint{}, false, nil
}

func (m *MemStore) FxRate(_ context.Context, base, quote string, on Date) (FxRatePoint, bool, error) {
	pair := base + "/" + quote
	for _, kind := range []string{KindClose, KindSpot} {
		if r, ok := m.fx[pair][priceKey{on.String(), kind}]; ok {
			return r, true, nil
		}
	}
	return FxRatePoint{}, false, nil
}

func (m *MemStore) PutPrice(_ context.Context, p PricePoint) error {
	if _, err := ParseDecimal(p.Price); err != nil {
		return fmt.Errorf("price for %q on %s: %w", p.AssetID, p.On, err)
	}
	if m.prices[p.AssetID] == nil {
		m.prices[p.AssetID] = make(map[priceKey]PricePoint)
	}
	// Last write wins for the same (asset, date, kind).
	m.prices[p.AssetID][priceKey{p.On.String(), p.Kind}] = p
	return nil
}

func (m *MemStore) PutFxRate(_ context.Context, r FxRatePoint) error {
	if _, err := ParseDecimal(r.Rate); err != nil {
		return fmt.Errorf("rate for %s/%s on %s: %w", r.Base, r.Quote, r.On, err)
	}
	pair := r.Base + "/" + r.Quote
	if m.fx[pair] == nil {
		m.fx[pair] = make(map[priceKey]FxRatePoint)
	}
	m.fx[pair][priceKey{r.On.String(), r.Kind}] = r
	return nil
}
