package divtrack

import "errors"

// Sentinel errors shared across the reporting APIs. Callers are expected to
// test them with errors.Is, as wrapping usually adds the offending portfolio,
// listing or currency pair.
var (
	// ErrPortfolioNotFound is returned when a portfolio does not exist or is
	// not owned by the requesting user. Both cases are deliberately
	// indistinguishable.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrRateUnavailable is returned when no exchange rate could be resolved
	// for a currency pair. Valuations never fall back to a silent 1.0.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrPriceUnavailable is returned when a listing has no recorded price.
	ErrPriceUnavailable = errors.New("price unavailable")
)
