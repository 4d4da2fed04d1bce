package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/divtrack/divtrack"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the portfolio summary to a markdown string.
func SummaryMarkdown(s *divtrack.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := s.Portfolio
	if s.Name != "" {
		title = s.Name
	}
	doc.H1(fmt.Sprintf("Summary of %s on %s", title, s.Date))

	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Open positions", strconv.Itoa(s.PositionCount)},
			{"Market value", amount(s.TotalValue, s.Currency)},
			{"Cost basis", amount(s.TotalCost, s.Currency)},
			{"Unrealized gain", signed(s.TotalGain, s.Currency)},
			{"Gain", s.GainPercent.SignedString()},
			{"Dividends received", amount(s.TotalDividends, s.Currency)},
		},
	})
	return doc.String()
}
