// Package feed fetches latest spot quotes from JSON HTTP endpoints and
// records them as market data points. Endpoints are described by a URL
// and a JSONPath to the quoted value, so new providers need configuration
// rather than code.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/colonelpanic8/keepbook"
)

// Quote describes where to fetch the latest value of one subject.
// For an asset price, Asset and Currency are set; for an exchange rate,
// Base and Quote are set instead.
type Quote struct {
	Asset    string `yaml:"asset,omitempty"`
	Currency string `yaml:"currency,omitempty"` // quote currency of the price
	Base     string `yaml:"base,omitempty"`
	Quote    string `yaml:"quote,omitempty"`
	URL      string `yaml:"url"`
	Path     string `yaml:"path"` // JSONPath to the quoted value
}

// IsRate reports whether the quote describes an exchange rate.
func (q Quote) IsRate() bool { return q.Base != "" }

func (q Quote) subject() string {
	if q.IsRate() {
		return q.Base + "/" + q.Quote
	}
	return q.Asset
}

// Client fetches quotes and records them in a market data store.
type Client struct {
	HTTP   *http.Client
	Log    zerolog.Logger
	Source string // recorded as the Source of every point
	Clock  keepbook.Clock
}

// NewClient returns a client on the default HTTP transport and system clock.
func NewClient(source string, log zerolog.Logger) *Client {
	return &Client{HTTP: http.DefaultClient, Log: log, Source: source, Clock: keepbook.SystemClock{}}
}

// Update fetches every quote and puts the resulting point into the store.
// A failing quote is logged and skipped; the first store error aborts.
// It returns the number of points recorded.
func (c *Client) Update(ctx context.Context, store keepbook.MarketDataStore, quotes []Quote) (int, error) {
	recorded := 0
	for _, q := range quotes {
		value, err := c.fetch(ctx, q)
		if err != nil {
			c.Log.Warn().Err(err).Str("subject", q.subject()).Msg("quote fetch failed, skipping")
			continue
		}

		now := c.Clock.Now()
		on := keepbook.DateOf(now)
		if q.IsRate() {
			err = store.PutFxRate(ctx, keepbook.FxRatePoint{
				Base: q.Base, Quote: q.Quote, On: on, Time: now,
				Rate: keepbook.DecString(value), Kind: keepbook.KindSpot, Source: c.Source,
			})
		} else {
			err = store.PutPrice(ctx, keepbook.PricePoint{
				AssetID: q.Asset, On: on, Time: now,
				Price: keepbook.DecString(value), QuoteCurrency: q.Currency,
				Kind: keepbook.KindSpot, Source: c.Source,
			})
		}
		if err != nil {
			return recorded, fmt.Errorf("recording quote for %q: %w", q.subject(), err)
		}
		c.Log.Info().Str("subject", q.subject()).Str("value", keepbook.DecString(value)).Msg("quote recorded")
		recorded++
	}
	return recorded, nil
}

// fetch retrieves one quote and extracts its value.
func (c *Client) fetch(ctx context.Context, q Quote) (decimal.Decimal, error) {
	var jobj any
	if err := c.jwget(ctx, q.URL, &jobj); err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetching %q: %w", q.subject(), err)
	}

	jval, err := jsonpath.Get(q.Path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("extracting %q at %q: %w", q.subject(), q.Path, err)
	}
	// jsonpath is never clear about whether it returns a list of one
	// answer or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		// Some providers return the value as a localized string.
		s := strings.ReplaceAll(strings.ReplaceAll(v, ",", "."), " ", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("quote for %q is an invalid string %q: %w", q.subject(), v, err)
		}
		return decimal.NewFromFloat(f), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("quote for %q at %q is not a number: %v", q.subject(), q.Path, jval)
	}
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
