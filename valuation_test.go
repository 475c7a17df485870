package keepbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valuationFixture(t *testing.T) *MemStore {
	t.Helper()
	ctx := context.Background()
	store := NewMemStore()
	store.AddAccount(Account{ID: "broker", Name: "Broker", Connection: "snaptrade"}, AccountConfig{})
	store.AddAccount(Account{ID: "bank", Name: "Bank"}, AccountConfig{})
	store.AddAccount(Account{ID: "paper", Name: "Paper"}, AccountConfig{ExcludeFromPortfolio: true})

	store.AppendSnapshot("broker", BalanceSnapshot{
		Time: time.Date(2025, time.January, 10, 16, 0, 0, 0, time.UTC),
		Balances: []AssetBalance{
			{Asset: "AAPL", Amount: "10"},
			{Asset: "USD", Amount: "500"},
		},
	})
	store.AppendSnapshot("broker", BalanceSnapshot{
		Time: time.Date(2025, time.January, 20, 16, 0, 0, 0, time.UTC),
		Balances: []AssetBalance{
			{Asset: "AAPL", Amount: "12"},
		},
	})
	store.AppendSnapshot("bank", BalanceSnapshot{
		Time:     time.Date(2025, time.January, 5, 8, 0, 0, 0, time.UTC),
		Balances: []AssetBalance{{Asset: "USD", Amount: "1000"}},
	})
	store.AppendSnapshot("paper", BalanceSnapshot{
		Time:     time.Date(2025, time.January, 5, 8, 0, 0, 0, time.UTC),
		Balances: []AssetBalance{{Asset: "USD", Amount: "999999"}},
	})

	require.NoError(t, store.PutPrice(ctx, PricePoint{
		AssetID: "AAPL", On: NewDate(2025, time.January, 9),
		Price: "230", QuoteCurrency: "USD", Kind: KindClose,
	}))
	require.NoError(t, store.PutPrice(ctx, PricePoint{
		AssetID: "AAPL", On: NewDate(2025, time.January, 14),
		Price: "240", QuoteCurrency: "USD", Kind: KindClose,
	}))
	return store
}

func TestValuateSumsLatestSnapshots(t *testing.T) {
	store := valuationFixture(t)
	valuer := NewSnapshotValuer(store, store)

	// As of Jan 12: broker still on the Jan 10 snapshot, price from Jan 9.
	// 10*230 + 500 + 1000 = 3800; the excluded account never counts.
	valuation, err := valuer.Valuate(context.Background(), NewDate(2025, time.January, 12), "USD", 0, true)
	require.NoError(t, err)
	assert.Equal(t, "3800", valuation.TotalValue)
	require.Len(t, valuation.Assets, 2)
	assert.Equal(t, "AAPL", valuation.Assets[0].Asset)
	assert.Equal(t, "10", valuation.Assets[0].TotalAmount)
	require.NotNil(t, valuation.Assets[0].ValueInBase)
	assert.Equal(t, "2300", *valuation.Assets[0].ValueInBase)
	assert.Equal(t, "USD", valuation.Assets[1].Asset)
	assert.Equal(t, "1500", valuation.Assets[1].TotalAmount)
}

func TestValuateLaterSnapshotReplacesEarlier(t *testing.T) {
	store := valuationFixture(t)
	valuer := NewSnapshotValuer(store, store)

	// As of Jan 25: broker's Jan 20 snapshot dropped the cash line.
	// 12*240 + 1000 = 3880.
	valuation, err := valuer.Valuate(context.Background(), NewDate(2025, time.January, 25), "USD", 0, false)
	require.NoError(t, err)
	assert.Equal(t, "3880", valuation.TotalValue)
	assert.Nil(t, valuation.Assets, "no per-asset breakdown requested")
}

func TestValuateBeforeAnySnapshot(t *testing.T) {
	store := valuationFixture(t)
	valuer := NewSnapshotValuer(store, store)

	valuation, err := valuer.Valuate(context.Background(), NewDate(2024, time.December, 1), "USD", 0, true)
	require.NoError(t, err)
	assert.Equal(t, "0", valuation.TotalValue)
	assert.Empty(t, valuation.Assets)
}

func TestValuateMissingConversionIsNil(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.AddAccount(Account{ID: "broker"}, AccountConfig{})
	store.AppendSnapshot("broker", BalanceSnapshot{
		Time: time.Date(2025, time.January, 10, 16, 0, 0, 0, time.UTC),
		Balances: []AssetBalance{
			{Asset: "MYSTERY", Amount: "5"},
			{Asset: "USD", Amount: "100"},
		},
	})

	valuation, err := NewSnapshotValuer(store, store).Valuate(ctx, NewDate(2025, time.January, 12), "USD", 0, true)
	require.NoError(t, err)
	require.Len(t, valuation.Assets, 2)
	assert.Nil(t, valuation.Assets[0].ValueInBase, "unpriced asset has no conversion")
	assert.Equal(t, "100", valuation.TotalValue, "unconvertible lines contribute zero")
}

func TestValuateCurrencyHoldingThroughFxRate(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.AddAccount(Account{ID: "bank"}, AccountConfig{})
	store.AppendSnapshot("bank", BalanceSnapshot{
		Time:     time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC),
		Balances: []AssetBalance{{Asset: "EUR", Amount: "100"}},
	})
	// The rate is four days old: within the lookback window.
	require.NoError(t, store.PutFxRate(ctx, FxRatePoint{
		Base: "EUR", Quote: "USD", On: NewDate(2025, time.January, 8),
		Rate: "1.05", Kind: KindClose,
	}))

	valuation, err := NewSnapshotValuer(store, store).Valuate(ctx, NewDate(2025, time.January, 12), "USD", 2, true)
	require.NoError(t, err)
	assert.Equal(t, "105.00", valuation.TotalValue)

	// Ten days past the rate the lookback window is exhausted.
	valuation, err = NewSnapshotValuer(store, store).Valuate(ctx, NewDate(2025, time.January, 18), "USD", 2, true)
	require.NoError(t, err)
	assert.Equal(t, "0.00", valuation.TotalValue)
	require.Len(t, valuation.Assets, 1)
	assert.Nil(t, valuation.Assets[0].ValueInBase)
}

func TestValuatePricedAssetInForeignQuoteCurrency(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.AddAccount(Account{ID: "broker"}, AccountConfig{})
	store.AppendSnapshot("broker", BalanceSnapshot{
		Time:     time.Date(2025, time.January, 10, 16, 0, 0, 0, time.UTC),
		Balances: []AssetBalance{{Asset: "MC.PA", Amount: "2"}},
	})
	require.NoError(t, store.PutPrice(ctx, PricePoint{
		AssetID: "MC.PA", On: NewDate(2025, time.January, 10),
		Price: "600", QuoteCurrency: "EUR", Kind: KindClose,
	}))
	require.NoError(t, store.PutFxRate(ctx, FxRatePoint{
		Base: "EUR", Quote: "USD", On: NewDate(2025, time.January, 10),
		Rate: "1.05", Kind: KindClose,
	}))

	valuation, err := NewSnapshotValuer(store, store).Valuate(ctx, NewDate(2025, time.January, 10), "USD", 0, true)
	require.NoError(t, err)
	assert.Equal(t, "1260", valuation.TotalValue)
}
