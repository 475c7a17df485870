package keepbook

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ChangePoint is an instant at which portfolio composition or valuation
// could have changed, together with the facts that make it exist.
// Change points are constructed transiently per history request and are
// never persisted.
type ChangePoint struct {
	Time     time.Time
	Triggers []ChangeTrigger
}

// Date returns the UTC calendar date of the point.
func (p ChangePoint) Date() Date { return DateOf(p.Time) }

// Collector builds the ordered set of change points of a portfolio from
// balance and price history. A collector is built per request and holds no
// shared state.
type Collector struct {
	storage Storage
	market  MarketDataStore

	// points are merged on the exact epoch-nanosecond of their instant, so
	// events differing only in sub-millisecond precision neither collide
	// nor split.
	points map[int64]*ChangePoint
	assets map[string]struct{} // distinct assets ever held by any included account
}

// NewCollector returns a collector reading from the given collaborators.
func NewCollector(storage Storage, market MarketDataStore) *Collector {
	return &Collector{
		storage: storage,
		market:  market,
		points:  make(map[int64]*ChangePoint),
		assets:  make(map[string]struct{}),
	}
}

// Add merges a trigger into the point at the given instant, creating the
// point if the instant is new.
func (c *Collector) Add(at time.Time, trigger ChangeTrigger) {
	key := at.UnixNano()
	p, ok := c.points[key]
	if !ok {
		p = &ChangePoint{Time: at}
		c.points[key] = p
	}
	p.Triggers = append(p.Triggers, trigger)
}

// Assets returns the distinct assets ever held by any included account, in
// lexical order. It is populated by Collect and scopes which assets' price
// histories are fetched.
func (c *Collector) Assets() []string {
	assets := make([]string, 0, len(c.assets))
	for a := range c.assets {
		assets = append(assets, a)
	}
	sort.Strings(assets)
	return assets
}

// Collect gathers one change point per distinct instant: a balance trigger
// for every balance line of every snapshot of every included account, and,
// when includePrices is set, a price trigger per historical price of every
// asset ever held. Accounts configured as excluded from the portfolio are
// skipped entirely. The result is sorted ascending by instant.
func (c *Collector) Collect(ctx context.Context, includePrices bool) ([]ChangePoint, error) {
	accounts, err := c.storage.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	for _, account := range accounts {
		cfg, err := c.storage.GetAccountConfig(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("reading config for account %q: %w", account.ID, err)
		}
		if cfg.ExcludeFromPortfolio {
			continue
		}

		snapshots, err := c.storage.BalanceSnapshots(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("reading snapshots for account %q: %w", account.ID, err)
		}
		for _, snapshot := range snapshots {
			for _, balance := range snapshot.Balances {
				c.assets[balance.Asset] = struct{}{}
				c.Add(snapshot.Time, BalanceTrigger{Account: account.ID, Asset: balance.Asset})
			}
		}
	}

	if includePrices {
		for _, asset := range c.Assets() {
			prices, err := c.market.AllPrices(ctx, asset)
			if err != nil {
				return nil, fmt.Errorf("reading price history for %q: %w", asset, err)
			}
			for _, price := range prices {
				// The price instant is the as-of date at end of day, not the
				// ingestion time, so prices order consistently with calendar
				// reporting regardless of when they were fetched.
				c.Add(price.On.EndOfDay(), PriceTrigger{AssetID: price.AssetID})
			}
		}
	}

	return c.sorted(), nil
}

// sorted returns the collected points ascending by their exact instant.
func (c *Collector) sorted() []ChangePoint {
	keys := make([]int64, 0, len(c.points))
	for key := range c.points {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	points := make([]ChangePoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, *c.points[key])
	}
	return points
}
