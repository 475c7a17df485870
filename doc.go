// Package keepbook reconstructs the value history of a portfolio from an
// append-only ledger of balance snapshots, price quotes, and FX rates
// accumulated from multiple independent sources.
//
// The core functionalities include:
//   - Change Points: discovering the discrete instants at which portfolio
//     composition or valuation could have changed, and merging instants
//     reported by independent sources without losing sub-millisecond order.
//   - Filtering: reducing a change-point series to a requested granularity
//     (hourly, daily, weekly, monthly, yearly, or a custom interval) or to
//     an inclusive calendar date range.
//   - Valuation Carry-Forward: computing a total value per point that
//     tolerates temporarily missing currency conversions by reusing the
//     last known unit value of each asset.
//   - Reconciliation: merging duplicate transactions that arrive under
//     rotating identifiers from the same upstream source.
//   - Data Persistence: encoding and decoding snapshots and market data
//     to and from human-readable, version-controllable JSONL files.
//
// All arithmetic is exact decimal with 29 significant digits; values are
// rendered as strings and rounded (half-up) only at formatting boundaries.
// This package serves as the foundational logic for the `kb` command-line
// tool.
package keepbook
