// Package divtrack provides the domain logic for a dividend-oriented
// portfolio analytics engine. It is designed to be local-first and
// auditable: every figure a report shows can be traced back to a line in a
// plain-text ledger.
//
// The core functionalities include:
//   - Ledger Management: recording buys, sells, dividends, withholding taxes
//     and stock splits in an immutable, chronological record, scoped to
//     portfolios owned by users.
//   - Market Data: listing metadata, historical prices and exchange rates,
//     persisted in human-readable JSONL and updated from a quote provider.
//   - Position Aggregation: folding the ledger into open positions with an
//     average-cost basis.
//   - Valuation: converting positions into a chosen display currency through
//     a layered FX resolver (in-process cache, persisted history, live
//     provider).
//   - Dividend Analytics: yearly summaries, dense monthly breakdowns, yield
//     comparisons and payment-cadence inference.
//
// This package serves as the foundational logic for the `dvt` command-line
// tool.
package divtrack
