package divtrack

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DividendFrequency classifies the payment cadence of a listing, inferred
// from the gaps between historical payments.
type DividendFrequency string

const (
	FreqMonthly    DividendFrequency = "monthly"
	FreqQuarterly  DividendFrequency = "quarterly"
	FreqSemiAnnual DividendFrequency = "semi-annual"
	FreqAnnual     DividendFrequency = "annual"
	FreqIrregular  DividendFrequency = "irregular"
)

// DividendInfo describes the observed payment pattern of one listing.
type DividendInfo struct {
	Listing ListingID
	Ticker  string

	Frequency    DividendFrequency
	Payments     int     // number of distinct payment dates
	AvgPayment   float64 // average amount per payment, display currency
	LastPayment  Date
	NextEstimate Date // zero when the cadence is irregular
}

// inferFrequency classifies the cadence from the mean gap between
// consecutive payment dates. Fewer than three payments is not enough signal
// and stays irregular.
func inferFrequency(dates []Date) (DividendFrequency, int) {
	if len(dates) < 3 {
		return FreqIrregular, 0
	}
	total := 0
	for i := 1; i < len(dates); i++ {
		total += dates[i].Sub(dates[i-1])
	}
	mean := float64(total) / float64(len(dates)-1)
	switch {
	case mean <= 45:
		return FreqMonthly, 1
	case mean <= 135:
		return FreqQuarterly, 3
	case mean <= 270:
		return FreqSemiAnnual, 6
	case mean <= 550:
		return FreqAnnual, 12
	default:
		return FreqIrregular, 0
	}
}

// dividendScope resolves the optional portfolio filter of the dividend
// queries. An empty id spans every portfolio owned by the caller; the display
// currency then defaults to the first portfolio's currency, in id order.
func dividendScope(b *Book, owner, portfolioID, currency string) ([]string, string, error) {
	if portfolioID != "" {
		p, err := b.Portfolio(owner, portfolioID)
		if err != nil {
			return nil, "", err
		}
		if currency == "" {
			currency = p.Currency
		}
		return []string{p.ID}, currency, nil
	}
	var ids []string
	for p := range b.Portfolios(owner) {
		ids = append(ids, p.ID)
		if currency == "" {
			currency = p.Currency
		}
	}
	if len(ids) == 0 {
		return nil, "", fmt.Errorf("owner %q: %w", owner, ErrPortfolioNotFound)
	}
	return ids, currency, nil
}

// payment is one converted dividend event.
type payment struct {
	listing ListingID
	on      Date
	gross   float64 // display currency
	tax     float64 // display currency
}

// payments converts the dividend and tax transactions of the given portfolios
// into display-currency payment events, in chronological order. Rates are
// resolved at each transaction date.
func payments(ctx context.Context, b *Book, fx *Resolver, portfolios []string, currency string, filters ...TxFilter) ([]payment, error) {
	byKey := make(map[string]*payment)
	var order []string

	filters = append([]TxFilter{ByPortfolios(portfolios...), ByType(CmdDividend, CmdTax)}, filters...)
	for tx := range b.Ledger().Transactions(filters...) {
		var amount Money
		switch v := tx.(type) {
		case Dividend:
			amount = v.Amount
		case Tax:
			amount = v.Amount
		}
		rate, err := fx.Resolve(ctx, amount.Currency(), currency, tx.When())
		if err != nil {
			return nil, fmt.Errorf("converting dividend of %s: %w", tx.Listing(), err)
		}

		// same-day events for a listing merge into one payment
		key := tx.Listing().String() + "@" + tx.When().String()
		p, ok := byKey[key]
		if !ok {
			p = &payment{listing: tx.Listing(), on: tx.When()}
			byKey[key] = p
			order = append(order, key)
		}
		if tx.What() == CmdTax {
			p.tax += amount.Float64() * rate
		} else {
			p.gross += amount.Float64() * rate
		}
	}

	list := make([]payment, 0, len(order))
	for _, key := range order {
		list = append(list, *byKey[key])
	}
	slices.SortStableFunc(list, func(a, b payment) int {
		switch {
		case a.on.Before(b.on):
			return -1
		case a.on.After(b.on):
			return 1
		default:
			return 0
		}
	})
	return list, nil
}

// DividendOptions filters the yearly dividend report. Zero values leave the
// dimension unfiltered; filters compose by AND.
type DividendOptions struct {
	Ticker   string
	Year     int
	Currency string // display currency, defaults to the portfolio currency
}

// YearlyDividends sums the dividends of one listing in one calendar year,
// next to the purchase amounts of the same year.
type YearlyDividends struct {
	Ticker  string
	Listing ListingID
	Year    int
	Gross   float64 // display currency
	Tax     float64
	Count   int
	Cost    float64 // buy amounts of the same listing and year

	YieldOnCost Percent // gross / cost
	AvgPayment  float64 // gross / count
}

// MarshalJSON encodes the row with canonical field order and two-decimal
// figures.
func (y YearlyDividends) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", y.Ticker)
	w.Append("year", y.Year)
	w.Append("totalDividends", round2(y.Gross))
	w.Optional("taxWithheld", round2(y.Tax))
	w.Append("dividendCount", y.Count)
	w.Append("totalCost", round2(y.Cost))
	w.Append("yieldOnCost", round2(float64(y.YieldOnCost)))
	w.Append("avgDividendPerPayment", round2(y.AvgPayment))
	return w.MarshalJSON()
}

// DividendsReport lists per-listing yearly dividend summaries.
type DividendsReport struct {
	Portfolio string // empty when the report spans all portfolios
	Currency  string
	Rows      []YearlyDividends
	Total     float64 // gross total over all rows
}

// MarshalJSON encodes the report with canonical field order.
func (r *DividendsReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("portfolio", r.Portfolio)
	w.Append("currency", r.Currency)
	rows := r.Rows
	if rows == nil {
		rows = []YearlyDividends{}
	}
	w.Append("dividends", rows)
	w.Append("totalDividends", round2(r.Total))
	return w.MarshalJSON()
}

// NewDividendsReport builds the yearly dividend summaries, sorted by ticker
// ascending then year descending. An empty portfolio id spans every portfolio
// of the owner.
func NewDividendsReport(ctx context.Context, b *Book, m *MarketData, fx *Resolver, owner, portfolioID string, opt DividendOptions) (*DividendsReport, error) {
	ids, currency, err := dividendScope(b, owner, portfolioID, opt.Currency)
	if err != nil {
		return nil, err
	}
	if err := ValidateCurrency(currency); err != nil {
		return nil, err
	}

	var filters []TxFilter
	if opt.Ticker != "" {
		listing := m.ByTicker(opt.Ticker)
		if listing == nil {
			// unknown ticker matches nothing rather than failing
			return &DividendsReport{Portfolio: portfolioID, Currency: currency}, nil
		}
		filters = append(filters, ByListing(listing.ID()))
	}
	if opt.Year != 0 {
		filters = append(filters, InYear(opt.Year))
	}

	list, err := payments(ctx, b, fx, ids, currency, filters...)
	if err != nil {
		return nil, err
	}

	type key struct {
		listing ListingID
		year    int
	}
	rows := make(map[key]*YearlyDividends)
	for _, pay := range list {
		k := key{pay.listing, pay.on.Year()}
		row, ok := rows[k]
		if !ok {
			row = &YearlyDividends{Listing: pay.listing, Year: k.year}
			if listing := m.Listing(pay.listing); listing != nil {
				row.Ticker = listing.Ticker()
			}
			rows[k] = row
		}
		row.Gross += pay.gross
		row.Tax += pay.tax
		row.Count++
	}

	// purchase amounts fold into the same (listing, year) groups
	buyFilters := append([]TxFilter{ByPortfolios(ids...), ByType(CmdBuy)}, filters...)
	for tx := range b.Ledger().Transactions(buyFilters...) {
		buy, ok := tx.(Buy)
		if !ok {
			continue
		}
		row, ok := rows[key{buy.Security, buy.When().Year()}]
		if !ok {
			continue
		}
		rate, err := fx.Resolve(ctx, buy.Amount.Currency(), currency, buy.When())
		if err != nil {
			return nil, fmt.Errorf("converting purchase of %s: %w", buy.Security, err)
		}
		row.Cost += buy.Amount.Float64() * rate
	}

	report := &DividendsReport{Portfolio: portfolioID, Currency: currency}
	for _, row := range rows {
		row.YieldOnCost = Percent(guardDiv(row.Gross, row.Cost) * 100)
		row.AvgPayment = guardDiv(row.Gross, float64(row.Count))
		report.Rows = append(report.Rows, *row)
		report.Total += row.Gross
	}
	slices.SortFunc(report.Rows, func(a, b YearlyDividends) int {
		if c := strings.Compare(a.Ticker, b.Ticker); c != 0 {
			return c
		}
		return b.Year - a.Year // most recent year first
	})
	return report, nil
}

// MonthlyDividends is one cell of the monthly breakdown. A month without
// payments keeps zero totals and an empty company list.
type MonthlyDividends struct {
	Year      int
	Month     time.Month
	Total     float64
	Count     int
	Companies []string // tickers that paid this month, sorted
}

// MarshalJSON encodes the cell with canonical field order. An empty company
// list encodes as [], never null.
func (md MonthlyDividends) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("year", md.Year)
	w.Append("month", int(md.Month))
	w.Append("totalDividends", round2(md.Total))
	w.Append("dividendCount", md.Count)
	companies := md.Companies
	if companies == nil {
		companies = []string{}
	}
	w.Append("companies", companies)
	return w.MarshalJSON()
}

// MonthlyOptions filters the monthly dividend chart. A zero year range spans
// every year with recorded payments; a single bound restricts to that year.
type MonthlyOptions struct {
	FromYear int
	ToYear   int
	Currency string // display currency, defaults to the portfolio currency
}

// MonthlyReport is the dense monthly dividend grid: twelve cells for every
// year covered, present even when nothing was paid that month.
type MonthlyReport struct {
	Portfolio string // empty when the report spans all portfolios
	Currency  string
	Years     []int              // sorted years covered by the grid
	Rows      []MonthlyDividends // 12 cells per year, chronological
	Total     float64
}

// MarshalJSON encodes the report with canonical field order. Years and months
// encode as [], never null.
func (r *MonthlyReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("portfolio", r.Portfolio)
	w.Append("currency", r.Currency)
	years := r.Years
	if years == nil {
		years = []int{}
	}
	w.Append("years", years)
	rows := r.Rows
	if rows == nil {
		rows = []MonthlyDividends{}
	}
	w.Append("months", rows)
	w.Append("totalDividends", round2(r.Total))
	return w.MarshalJSON()
}

// NewMonthlyReport builds the dense monthly dividend grid. With an explicit
// year range every year of the range gets its twelve cells; without one the
// grid covers the years that actually saw payments. An empty portfolio id
// spans every portfolio of the owner.
func NewMonthlyReport(ctx context.Context, b *Book, m *MarketData, fx *Resolver, owner, portfolioID string, opt MonthlyOptions) (*MonthlyReport, error) {
	ids, currency, err := dividendScope(b, owner, portfolioID, opt.Currency)
	if err != nil {
		return nil, err
	}
	if err := ValidateCurrency(currency); err != nil {
		return nil, err
	}

	from, to := opt.FromYear, opt.ToYear
	if from == 0 {
		from = to
	}
	if to == 0 {
		to = from
	}
	if to < from {
		from, to = to, from
	}

	var filters []TxFilter
	if from != 0 {
		filters = append(filters, Within(NewRange(NewDate(from, time.January, 1), NewDate(to, time.December, 31))))
	}
	list, err := payments(ctx, b, fx, ids, currency, filters...)
	if err != nil {
		return nil, err
	}

	var years []int
	if from != 0 {
		for y := from; y <= to; y++ {
			years = append(years, y)
		}
	} else {
		for _, pay := range list {
			if !slices.Contains(years, pay.on.Year()) {
				years = append(years, pay.on.Year())
			}
		}
		slices.Sort(years)
	}

	report := &MonthlyReport{Portfolio: portfolioID, Currency: currency, Years: years}
	base := make(map[int]int, len(years))
	for _, y := range years {
		base[y] = len(report.Rows)
		for month := time.January; month <= time.December; month++ {
			report.Rows = append(report.Rows, MonthlyDividends{Year: y, Month: month})
		}
	}

	for _, pay := range list {
		cell := &report.Rows[base[pay.on.Year()]+int(pay.on.Month())-1]
		cell.Total += pay.gross
		cell.Count++
		ticker := pay.listing.Instrument()
		if listing := m.Listing(pay.listing); listing != nil {
			ticker = listing.Ticker()
		}
		if !slices.Contains(cell.Companies, ticker) {
			cell.Companies = append(cell.Companies, ticker)
			slices.Sort(cell.Companies)
		}
		report.Total += pay.gross
	}
	return report, nil
}

// YieldEntry compares the trailing-year dividend income of one open position
// against its market value and cost basis. The two yields are guarded
// independently: a zero value or basis yields 0, never NaN, and a position
// without a recorded price has no dividend yield at all.
type YieldEntry struct {
	Ticker  string
	Listing ListingID

	MarketValue float64 // display currency
	CostBasis   float64
	Trailing    float64 // dividends received in the trailing 365 days

	Yield       Percent // trailing / market value, 0 when the price is missing
	YieldOnCost Percent // trailing / cost basis

	Frequency    DividendFrequency
	AvgPayment   float64
	LastPayment  Date
	NextEstimate Date
	PriceMissing bool
}

// MarshalJSON encodes the entry with canonical field order.
func (y YieldEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", y.Ticker)
	w.Append("marketValue", round2(y.MarketValue))
	w.Append("costBasis", round2(y.CostBasis))
	w.Append("trailingDividends", round2(y.Trailing))
	w.Append("dividendYield", round2(float64(y.Yield)))
	w.Append("yieldOnCost", round2(float64(y.YieldOnCost)))
	w.Append("frequency", string(y.Frequency))
	w.Optional("avgPayment", round2(y.AvgPayment))
	if !y.LastPayment.IsZero() {
		w.Append("lastPayment", y.LastPayment)
	}
	if !y.NextEstimate.IsZero() {
		w.Append("nextEstimate", y.NextEstimate)
	}
	w.Optional("priceUnavailable", y.PriceMissing)
	return w.MarshalJSON()
}

// YieldReport lists the yield comparison of the dividend-paying open
// positions on a date.
type YieldReport struct {
	Portfolio string // empty when the report spans all portfolios
	Currency  string
	Date      Date
	Entries   []YieldEntry
}

// MarshalJSON encodes the report with canonical field order.
func (r *YieldReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.Date)
	w.Optional("portfolio", r.Portfolio)
	w.Append("currency", r.Currency)
	entries := r.Entries
	if entries == nil {
		entries = []YieldEntry{}
	}
	w.Append("entries", entries)
	return w.MarshalJSON()
}

// NewYieldReport compares trailing-year dividend income against market value
// (dividend yield) and cost basis (yield on cost), and attaches the inferred
// payment cadence. Only open positions with at least one historical dividend
// appear. An empty portfolio id spans every portfolio of the owner.
func NewYieldReport(ctx context.Context, b *Book, m *MarketData, fx *Resolver, owner, portfolioID string, opt PositionsOptions) (*YieldReport, error) {
	ids, currency, err := dividendScope(b, owner, portfolioID, opt.Currency)
	if err != nil {
		return nil, err
	}
	opt.Currency = currency
	opt.Page, opt.Limit = 0, 0
	if opt.SortBy == "" {
		opt.SortBy = SortByTicker
	}
	if opt.AsOf.IsZero() {
		opt.AsOf = Today()
	}

	// positions and payments stay paired per portfolio, so a listing held in
	// two portfolios is measured against its own portfolio's income only
	type scoped struct {
		pos  ValuedPosition
		pays []payment
	}
	var all []scoped
	for _, id := range ids {
		positions, err := NewPositionsReport(ctx, b, m, fx, owner, id, opt)
		if err != nil {
			return nil, err
		}
		list, err := payments(ctx, b, fx, []string{id}, currency)
		if err != nil {
			return nil, err
		}
		for _, pos := range positions.Positions {
			all = append(all, scoped{pos: pos, pays: list})
		}
	}
	compare := comparator(opt.SortBy)
	if opt.Descending {
		asc := compare
		compare = func(a, b ValuedPosition) int { return -asc(a, b) }
	}
	slices.SortStableFunc(all, func(a, b scoped) int { return compare(a.pos, b.pos) })

	window := TrailingYear(opt.AsOf)
	report := &YieldReport{Portfolio: portfolioID, Currency: currency, Date: opt.AsOf}
	for _, s := range all {
		pos := s.pos
		entry := YieldEntry{
			Ticker:       pos.Ticker,
			Listing:      pos.Listing,
			MarketValue:  pos.MarketValue,
			CostBasis:    pos.CostBasis,
			PriceMissing: pos.PriceMissing,
		}

		var dates []Date
		var gross float64
		for _, pay := range s.pays {
			if pay.listing != pos.Listing || pay.on.After(opt.AsOf) {
				continue
			}
			dates = append(dates, pay.on)
			gross += pay.gross
			if window.Contains(pay.on) {
				entry.Trailing += pay.gross
			}
		}
		if len(dates) == 0 {
			// holdings that never paid a dividend have no yield to compare
			continue
		}

		if !pos.PriceMissing {
			entry.Yield = Percent(guardDiv(entry.Trailing, entry.MarketValue) * 100)
		}
		entry.YieldOnCost = Percent(guardDiv(entry.Trailing, entry.CostBasis) * 100)

		frequency, months := inferFrequency(dates)
		entry.Frequency = frequency
		entry.LastPayment = dates[len(dates)-1]
		entry.AvgPayment = gross / float64(len(dates))
		if months > 0 {
			entry.NextEstimate = entry.LastPayment.AddMonth(months)
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

// Info returns the dividend cadence of one listing held in a portfolio.
func Info(ctx context.Context, b *Book, m *MarketData, fx *Resolver, owner, portfolioID string, listing ListingID) (*DividendInfo, error) {
	p, err := b.Portfolio(owner, portfolioID)
	if err != nil {
		return nil, err
	}
	list, err := payments(ctx, b, fx, []string{p.ID}, p.Currency, ByListing(listing))
	if err != nil {
		return nil, err
	}

	info := &DividendInfo{Listing: listing}
	if l := m.Listing(listing); l != nil {
		info.Ticker = l.Ticker()
	}
	var dates []Date
	var gross float64
	for _, pay := range list {
		dates = append(dates, pay.on)
		gross += pay.gross
	}
	frequency, months := inferFrequency(dates)
	info.Frequency = frequency
	info.Payments = len(dates)
	if len(dates) > 0 {
		info.LastPayment = dates[len(dates)-1]
		info.AvgPayment = gross / float64(len(dates))
	}
	if months > 0 {
		info.NextEstimate = info.LastPayment.AddMonth(months)
	}
	return info, nil
}
