package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/divtrack/divtrack"
	md "github.com/nao1215/markdown"
)

// portfolioLabel names the scope of a dividend report in headings.
func portfolioLabel(id string) string {
	if id == "" {
		return "all portfolios"
	}
	return id
}

// DividendsMarkdown renders the yearly dividend summaries to a markdown
// string.
func DividendsMarkdown(r *divtrack.DividendsReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Dividends of %s", portfolioLabel(r.Portfolio)))

	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		net := row.Gross - row.Tax
		rows = append(rows, []string{
			row.Ticker,
			strconv.Itoa(row.Year),
			amount(row.Gross, r.Currency),
			amount(row.Tax, r.Currency),
			amount(net, r.Currency),
			strconv.Itoa(row.Count),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Ticker", "Year", "Gross", "Tax", "Net", "Payments"},
		Rows:   rows,
	})

	doc.PlainText(fmt.Sprintf("Total received: %s", amount(r.Total, r.Currency)))
	return doc.String()
}

// MonthlyMarkdown renders the dense monthly dividend grid. Every month of
// every covered year appears, paid or not.
func MonthlyMarkdown(r *divtrack.MonthlyReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Monthly dividends of %s", portfolioLabel(r.Portfolio)))

	rows := make([][]string, 0, len(r.Rows))
	for _, m := range r.Rows {
		rows = append(rows, []string{
			strconv.Itoa(m.Year),
			m.Month.String(),
			amount(m.Total, r.Currency),
			strconv.Itoa(m.Count),
			strings.Join(m.Companies, ", "),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Year", "Month", "Dividends", "Payments", "Companies"},
		Rows:   rows,
	})

	doc.PlainText(fmt.Sprintf("Total received: %s", amount(r.Total, r.Currency)))
	return doc.String()
}

// YieldMarkdown renders the yield comparison of open positions.
func YieldMarkdown(r *divtrack.YieldReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Dividend yields of %s on %s", portfolioLabel(r.Portfolio), r.Date))

	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		next := ""
		if !e.NextEstimate.IsZero() {
			next = "~" + e.NextEstimate.String()
		}
		rows = append(rows, []string{
			e.Ticker,
			amount(e.Trailing, r.Currency),
			e.Yield.String(),
			e.YieldOnCost.String(),
			string(e.Frequency),
			next,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Ticker", "Trailing 12m", "Yield", "Yield on Cost", "Frequency", "Next Payment"},
		Rows:   rows,
	})
	return doc.String()
}
