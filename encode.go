package keepbook

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// This file persists the store in a folder of JSONL files, in a way that
// is human-readable and git-friendly: one record per line, deterministic
// order on encode, so that re-encoding an unchanged store is a no-op diff.
//
// Layout:
//
//	accounts.jsonl             one account (with its config) per line
//	snapshots/<account>.jsonl  one balance snapshot per line, chronological
//	prices.jsonl               one price point per line
//	rates.jsonl                one FX rate point per line
//	transactions.jsonl         ingested transactions, one per line

const (
	accountsFile     = "accounts.jsonl"
	snapshotsDir     = "snapshots"
	pricesFile       = "prices.jsonl"
	ratesFile        = "rates.jsonl"
	transactionsFile = "transactions.jsonl"
)

// jaccount is the persisted form of an account and its configuration.
type jaccount struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Connection string `json:"connection,omitempty"`
	Excluded   bool   `json:"excludeFromPortfolio,omitempty"`
	Staleness  string `json:"stalenessThreshold,omitempty"` // time.Duration text form
}

// jsnapshot is the persisted form of a balance snapshot. The timestamp is
// RFC3339 with nanoseconds so sub-millisecond order survives round-trips.
type jsnapshot struct {
	Time     string         `json:"time"`
	Balances []AssetBalance `json:"balances"`
}

// DecodeStore loads a store folder into memory. A missing folder is an
// error; a missing individual file is an empty section.
func DecodeStore(dir string) (*MemStore, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	m := NewMemStore()

	if err := eachLine(filepath.Join(dir, accountsFile), func(where string, line []byte) error {
		var ja jaccount
		if err := json.Unmarshal(line, &ja); err != nil {
			return fmt.Errorf("format error in %s: %w", where, err)
		}
		cfg := AccountConfig{ExcludeFromPortfolio: ja.Excluded}
		if ja.Staleness != "" {
			d, err := time.ParseDuration(ja.Staleness)
			if err != nil {
				return fmt.Errorf("format error in %s: %w", where, err)
			}
			cfg.StalenessThreshold = &d
		}
		m.AddAccount(Account{ID: ja.ID, Name: ja.Name, Connection: ja.Connection}, cfg)
		return nil
	}); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(dir, snapshotsDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		accountID := strings.TrimSuffix(name, ".jsonl")
		if err := eachLine(filepath.Join(dir, snapshotsDir, name), func(where string, line []byte) error {
			var js jsnapshot
			if err := json.Unmarshal(line, &js); err != nil {
				return fmt.Errorf("format error in %s: %w", where, err)
			}
			at, err := time.Parse(time.RFC3339Nano, js.Time)
			if err != nil {
				return fmt.Errorf("format error in %s: %w", where, err)
			}
			m.AppendSnapshot(accountID, BalanceSnapshot{Time: at, Balances: js.Balances})
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if err := eachLine(filepath.Join(dir, pricesFile), func(where string, line []byte) error {
		var p PricePoint
		if err := json.Unmarshal(line, &p); err != nil {
			return fmt.Errorf("format error in %s: %w", where, err)
		}
		return m.PutPrice(context.Background(), p)
	}); err != nil {
		return nil, err
	}

	if err := eachLine(filepath.Join(dir, ratesFile), func(where string, line []byte) error {
		var r FxRatePoint
		if err := json.Unmarshal(line, &r); err != nil {
			return fmt.Errorf("format error in %s: %w", where, err)
		}
		return m.PutFxRate(context.Background(), r)
	}); err != nil {
		return nil, err
	}

	if err := eachLine(filepath.Join(dir, transactionsFile), func(where string, line []byte) error {
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return fmt.Errorf("format error in %s: %w", where, err)
		}
		m.AddTransactions(tx)
		return nil
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// EncodeStore writes the store back to a folder, creating it if needed.
func EncodeStore(dir string, m *MemStore) error {
	if err := os.MkdirAll(filepath.Join(dir, snapshotsDir), 0o755); err != nil {
		return err
	}

	accounts := make([]jaccount, 0, len(m.accounts))
	for _, account := range m.accounts {
		cfg := m.configs[account.ID]
		ja := jaccount{
			ID:         account.ID,
			Name:       account.Name,
			Connection: account.Connection,
			Excluded:   cfg.ExcludeFromPortfolio,
		}
		if cfg.StalenessThreshold != nil {
			ja.Staleness = cfg.StalenessThreshold.String()
		}
		accounts = append(accounts, ja)
	}
	if err := writeLines(filepath.Join(dir, accountsFile), accounts); err != nil {
		return err
	}

	for accountID, snapshots := range m.snapshots {
		lines := make([]jsnapshot, 0, len(snapshots))
		for _, s := range snapshots {
			lines = append(lines, jsnapshot{
				Time:     s.Time.UTC().Format(time.RFC3339Nano),
				Balances: s.Balances,
			})
		}
		if err := writeLines(filepath.Join(dir, snapshotsDir, accountID+".jsonl"), lines); err != nil {
			return err
		}
	}

	var prices []PricePoint
	assets := make([]string, 0, len(m.prices))
	for asset := range m.prices {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	for _, asset := range assets {
		points, _ := m.AllPrices(context.Background(), asset)
		prices = append(prices, points...)
	}
	if err := writeLines(filepath.Join(dir, pricesFile), prices); err != nil {
		return err
	}

	var rates []FxRatePoint
	pairs := make([]string, 0, len(m.fx))
	for pair := range m.fx {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	for _, pair := range pairs {
		points := make([]FxRatePoint, 0, len(m.fx[pair]))
		for _, r := range m.fx[pair] {
			points = append(points, r)
		}
		sort.Slice(points, func(i, j int) bool {
			if points[i].On != points[j].On {
				return points[i].On.Before(points[j].On)
			}
			return points[i].Kind < points[j].Kind
		})
		rates = append(rates, points...)
	}
	if err := writeLines(filepath.Join(dir, ratesFile), rates); err != nil {
		return err
	}

	return writeLines(filepath.Join(dir, transactionsFile), m.transactions)
}

// eachLine calls fn for every non-empty line of a JSONL file, with a
// "filename:line" location for error messages. A missing file is fine.
func eachLine(filename string, fn func(where string, line []byte) error) error {
	r, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open %q for reading: %w", filename, err)
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := fn(fmt.Sprintf("%s:%d", filename, i), line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// writeLines writes one JSON object per line.
func writeLines[T any](filename string, records []T) error {
	w, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot open %q for writing: %w", filename, err)
	}
	defer w.Close()
	return encodeLines(w, records)
}

func encodeLines[T any](w io.Writer, records []T) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return bw.Flush()
}
