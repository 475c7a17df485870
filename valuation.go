package keepbook

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// fxLookbackDays bounds how far back the valuer searches for an exchange
// rate. Beyond that the conversion is reported as unavailable and the
// history carry-forward takes over.
const fxLookbackDays = 7

// SnapshotValuer is the default valuation collaborator. It values the
// portfolio as of a date from the latest balance snapshot of each included
// account, prices as of that date, and exchange rates looked up with a
// bounded backward search.
type SnapshotValuer struct {
	Storage Storage
	Market  MarketDataStore
}

// NewSnapshotValuer returns a valuer reading from the given collaborators.
func NewSnapshotValuer(storage Storage, market MarketDataStore) *SnapshotValuer {
	return &SnapshotValuer{Storage: storage, Market: market}
}

// Valuate computes the portfolio valuation as of the given date in the
// reporting currency. When byAsset is set, the valuation carries one line
// per held asset; lines whose conversion is unavailable have a nil
// ValueInBase and contribute zero to the uncarried total.
func (v *SnapshotValuer) Valuate(ctx context.Context, on Date, currency string, precision int32, byAsset bool) (Valuation, error) {
	amounts, err := v.holdings(ctx, on)
	if err != nil {
		return Valuation{}, err
	}

	assets := make([]string, 0, len(amounts))
	for asset := range amounts {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	valuation := Valuation{On: on, Currency: currency}
	total := decimal.Zero
	for _, asset := range assets {
		amount := amounts[asset]
		line := AssetValuation{Asset: asset, TotalAmount: DecString(amount)}

		value, ok, err := v.convert(ctx, asset, amount, currency, on)
		if err != nil {
			return Valuation{}, err
		}
		if ok {
			s := render(value, precision)
			line.ValueInBase = &s
			total = total.Add(value)
		}
		if byAsset {
			valuation.Assets = append(valuation.Assets, line)
		}
	}
	valuation.TotalValue = render(total, precision)
	return valuation, nil
}

// holdings sums, per asset, the amounts of the latest snapshot on or
// before the given date of every included account.
func (v *SnapshotValuer) holdings(ctx context.Context, on Date) (map[string]decimal.Decimal, error) {
	accounts, err := v.Storage.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	amounts := make(map[string]decimal.Decimal)
	for _, account := range accounts {
		cfg, err := v.Storage.GetAccountConfig(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("reading config for account %q: %w", account.ID, err)
		}
		if cfg.ExcludeFromPortfolio {
			continue
		}

		snapshots, err := v.Storage.BalanceSnapshots(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("reading snapshots for account %q: %w", account.ID, err)
		}
		var latest *BalanceSnapshot
		for i := range snapshots {
			if !DateOf(snapshots[i].Time).After(on) {
				latest = &snapshots[i]
			}
		}
		if latest == nil {
			continue // account had no snapshot yet on that date
		}

		for _, balance := range latest.Balances {
			amount, err := ParseDecimal(balance.Amount)
			if err != nil {
				return nil, fmt.Errorf("snapshot of account %q: %w", account.ID, err)
			}
			amounts[balance.Asset] = amounts[balance.Asset].Add(amount)
		}
	}
	return amounts, nil
}

// convert values an asset amount in the reporting currency. It reports
// ok=false when no conversion chain exists on or before the date.
func (v *SnapshotValuer) convert(ctx context.Context, asset string, amount decimal.Decimal, currency string, on Date) (decimal.Decimal, bool, error) {
	if asset == currency {
		return amount, true, nil
	}

	// A priced asset: latest price on or before the date, then the quote
	// currency is converted if it is not already the reporting one.
	if price, ok, err := v.priceAsOf(ctx, asset, on); err != nil {
		return decimal.Decimal{}, false, err
	} else if ok {
		unit, err := ParseDecimal(price.Price)
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("price of %q on %s: %w", asset, price.On, err)
		}
		value := amount.Mul(unit)
		if price.QuoteCurrency == currency {
			return value, true, nil
		}
		rate, ok, err := v.rateAsOf(ctx, price.QuoteCurrency, currency, on)
		if err != nil || !ok {
			return decimal.Decimal{}, false, err
		}
		return value.Mul(rate), true, nil
	}

	// No price history: treat the asset as a currency holding.
	rate, ok, err := v.rateAsOf(ctx, asset, currency, on)
	if err != nil || !ok {
		return decimal.Decimal{}, false, err
	}
	return amount.Mul(rate), true, nil
}

// priceAsOf returns the latest price of an asset on or before the date.
func (v *SnapshotValuer) priceAsOf(ctx context.Context, asset string, on Date) (PricePoint, bool, error) {
	prices, err := v.Market.AllPrices(ctx, asset)
	if err != nil {
		return PricePoint{}, false, fmt.Errorf("reading price history for %q: %w", asset, err)
	}
	var latest PricePoint
	var found bool
	for _, p := range prices {
		if p.On.After(on) {
			continue
		}
		latest, found = p, true
	}
	return latest, found, nil
}

// rateAsOf searches the exchange rate base/quote backwards from the date,
// up to fxLookbackDays.
func (v *SnapshotValuer) rateAsOf(ctx context.Context, base, quote string, on Date) (decimal.Decimal, bool, error) {
	day := on
	for i := 0; i <= fxLookbackDays; i++ {
		point, ok, err := v.Market.FxRate(ctx, base, quote, day)
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("reading rate %s/%s on %s: %w", base, quote, day, err)
		}
		if ok {
			rate, err := ParseDecimal(point.Rate)
			if err != nil {
				return decimal.Decimal{}, false, fmt.Errorf("rate %s/%s on %s: %w", base, quote, day, err)
			}
			return rate, true, nil
		}
		day = day.Add(-1)
	}
	return decimal.Decimal{}, false, nil
}

// render formats a value at the requested precision; non-positive
// precision keeps the canonical unrounded form.
func render(d decimal.Decimal, precision int32) string {
	if precision <= 0 {
		return DecString(d)
	}
	return DecStringRounded(d, precision)
}
