package keepbook

import (
	"context"
	"testing"
	"time"
)

func TestCollectorMergesSameInstant(t *testing.T) {
	c := NewCollector(NewMemStore(), NewMemStore())
	at := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	c.Add(at, BalanceTrigger{Account: "acc-1", Asset: "USD"})
	c.Add(at, BalanceTrigger{Account: "acc-2", Asset: "USD"})

	points := c.sorted()
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1 merged point", len(points))
	}
	if len(points[0].Triggers) != 2 {
		t.Errorf("got %d triggers, want 2", len(points[0].Triggers))
	}
}

func TestCollectorKeepsSubMillisecondInstantsApart(t *testing.T) {
	c := NewCollector(NewMemStore(), NewMemStore())
	at := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	c.Add(at, BalanceTrigger{Account: "acc-1", Asset: "USD"})
	c.Add(at.Add(500*time.Microsecond), BalanceTrigger{Account: "acc-2", Asset: "USD"})

	if points := c.sorted(); len(points) != 2 {
		t.Fatalf("got %d points, want 2 distinct instants", len(points))
	}
}

func TestCollectorCollect(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.AddAccount(Account{ID: "broker", Name: "Broker"}, AccountConfig{})
	store.AddAccount(Account{ID: "paper", Name: "Paper trading"}, AccountConfig{ExcludeFromPortfolio: true})

	t1 := time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC)
	t2 := time.Date(2025, time.January, 20, 9, 30, 0, 0, time.UTC)
	store.AppendSnapshot("broker", BalanceSnapshot{Time: t1, Balances: []AssetBalance{
		{Asset: "AAPL", Amount: "10"},
		{Asset: "USD", Amount: "250.50"},
	}})
	store.AppendSnapshot("broker", BalanceSnapshot{Time: t2, Balances: []AssetBalance{
		{Asset: "AAPL", Amount: "12"},
	}})
	store.AppendSnapshot("paper", BalanceSnapshot{Time: t1, Balances: []AssetBalance{
		{Asset: "GME", Amount: "1000"},
	}})

	if err := store.PutPrice(ctx, PricePoint{AssetID: "AAPL", On: NewDate(2025, time.January, 15), Price: "230.10", QuoteCurrency: "USD", Kind: KindClose}); err != nil {
		t.Fatal(err)
	}

	c := NewCollector(store, store)
	points, err := c.Collect(ctx, true)
	if err != nil {
		t.Fatal(err)
	}

	// Two snapshot instants plus one price instant at end of day.
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Time.Before(points[i].Time) {
			t.Errorf("points out of order: %v before %v", points[i-1].Time, points[i].Time)
		}
	}

	wantEOD := time.Date(2025, time.January, 15, 23, 59, 59, 0, time.UTC)
	if !points[1].Time.Equal(wantEOD) {
		t.Errorf("price point at %v, want end of day %v", points[1].Time, wantEOD)
	}
	if len(points[1].Triggers) != 1 {
		t.Fatalf("price point has %d triggers, want 1", len(points[1].Triggers))
	}
	if got := points[1].Triggers[0].Label(); got != "price:AAPL" {
		t.Errorf("trigger label %q, want %q", got, "price:AAPL")
	}

	// The first snapshot carries one balance trigger per balance line.
	if len(points[0].Triggers) != 2 {
		t.Errorf("first point has %d triggers, want 2", len(points[0].Triggers))
	}

	// The excluded account contributes neither points nor assets.
	assets := c.Assets()
	if len(assets) != 2 || assets[0] != "AAPL" || assets[1] != "USD" {
		t.Errorf("assets = %v, want [AAPL USD]", assets)
	}
}

func TestCollectorCollectWithoutPrices(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.AddAccount(Account{ID: "broker"}, AccountConfig{})
	store.AppendSnapshot("broker", BalanceSnapshot{
		Time:     time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC),
		Balances: []AssetBalance{{Asset: "AAPL", Amount: "10"}},
	})
	if err := store.PutPrice(ctx, PricePoint{AssetID: "AAPL", On: NewDate(2025, time.January, 15), Price: "230.10", QuoteCurrency: "USD", Kind: KindClose}); err != nil {
		t.Fatal(err)
	}

	points, err := NewCollector(store, store).Collect(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want the snapshot point only", len(points))
	}
}
