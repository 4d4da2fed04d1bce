package renderer

import (
	"bytes"
	"fmt"

	"github.com/divtrack/divtrack"
	md "github.com/nao1215/markdown"
)

// PositionsMarkdown renders the valuation report to a markdown string.
func PositionsMarkdown(r *divtrack.PositionsReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Positions of %s on %s", r.Portfolio, r.Date))

	rows := make([][]string, 0, len(r.Positions))
	for _, p := range r.Positions {
		price := amount(p.Price, r.Currency)
		if p.PriceMissing {
			price = "n/a"
		}
		rows = append(rows, []string{
			p.Ticker,
			quantity(p.Quantity),
			amount(p.CostBasis, r.Currency),
			price,
			amount(p.MarketValue, r.Currency),
			signed(p.Gain, r.Currency),
			p.GainPercent.SignedString(),
			p.PortfolioPercent.String(),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Ticker", "Quantity", "Cost Basis", "Price", "Market Value", "Gain", "Gain %", "Weight"},
		Rows:   rows,
	})

	doc.PlainText(fmt.Sprintf("Total: %s (cost %s, gain %s)",
		amount(r.TotalValue, r.Currency),
		amount(r.TotalCost, r.Currency),
		signed(r.TotalGain, r.Currency)))

	if r.Limit > 0 {
		doc.PlainText(fmt.Sprintf("Page %d, %d of %d positions.", r.Page, len(r.Positions), r.Total))
	}
	return doc.String()
}
