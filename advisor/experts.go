package advisor

import (
	"context"
	"fmt"

	"github.com/divtrack/divtrack"
	"github.com/divtrack/divtrack/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is a dividend investor. He is here primarily to review his portfolio:
			its positions, its income stream and how it could be improved.

			Devise a plan of questions to ask each expert and come up with the best response
			to the user's request.

			The user will assume that you know his tickers, so check the portfolio first to
			understand what they are.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst returns the market analyst expert. It grounds its answers with
// Google Search.
func NewAnalyst() *Expert {
	return &Expert{
		Name: "Analyst",
		Description: `This is a market analyst,
		very well aware of listed companies, their dividend policies
		and the latest news about them.
		Ask the Analyst whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a market analyst. You can search and find anything related to
			listed companies, their dividends, markets and funds. You leverage Google
			Search to ground your assertions in solid truth.
			You can get the latest news too, and you know how to relate them to the
			user's request.
				`}}},
		},
	}
}

// NewAccountant returns the expert in charge of reading the user's portfolio.
// Its function library is bound to the given session.
func NewAccountant(s *Session) *Expert {
	lib := s.Functions()

	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. He has read access to the user's portfolio.
		He can report the open positions, the portfolio summary, the dividend history
		and the yield of each holding.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's portfolio.
				You know how to use the Tools to extract relevant information about the
				user's positions and dividend income. You are part of a team of experts,
				yours is everything recorded in the portfolio. They might ask you
				questions in approximative language, figure out what they meant.

				Use the available tools to report
				  - the portfolio summary
				  - the open positions and their value
				  - the dividend history per year
				  - the trailing yield of each holding
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Session carries the loaded portfolio data the accountant functions operate
// on. Reports are rendered to markdown, which the model reads natively.
type Session struct {
	Book      *divtrack.Book
	Market    *divtrack.MarketData
	Resolver  *divtrack.Resolver
	Owner     string
	Portfolio string
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	F    func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.F(ctx, id, args)
}

// Functions returns the accountant's function library for this session.
func (s *Session) Functions() []Function {
	return []Function{
		s.summaryFunc(),
		s.positionsFunc(),
		s.dividendsFunc(),
		s.yieldFunc(),
	}
}

func respond(id, name string, output string, err error) *genai.FunctionResponse {
	r := &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{}}
	if err != nil {
		r.Response["error"] = err.Error()
		return r
	}
	r.Response["output"] = output
	return r
}

func (s *Session) summaryFunc() Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Summary",
			Description: "Summary reports the portfolio on a given date: market value, cost basis, unrealized gain and dividends received since inception.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {
						Type:        genai.TypeString,
						Description: "The date of the summary in YYYY-MM-DD format. Today is the default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted summary of the portfolio.",
			},
		},
		F: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			on, err := parseDate(args)
			if err != nil {
				return respond(id, "Summary", "", err)
			}
			sum, err := divtrack.NewSummary(ctx, s.Book, s.Market, s.Resolver, s.Owner, s.Portfolio, on, "")
			if err != nil {
				return respond(id, "Summary", "", err)
			}
			return respond(id, "Summary", renderer.SummaryMarkdown(sum), nil)
		},
	}
}

func (s *Session) positionsFunc() Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Positions",
			Description: "Positions reports the open positions with their quantity, cost basis, market value and gain.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {
						Type:        genai.TypeString,
						Description: "The valuation date in YYYY-MM-DD format. Today is the default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of the open positions.",
			},
		},
		F: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			on, err := parseDate(args)
			if err != nil {
				return respond(id, "Positions", "", err)
			}
			report, err := divtrack.NewPositionsReport(ctx, s.Book, s.Market, s.Resolver, s.Owner, s.Portfolio,
				divtrack.PositionsOptions{AsOf: on})
			if err != nil {
				return respond(id, "Positions", "", err)
			}
			return respond(id, "Positions", renderer.PositionsMarkdown(report), nil)
		},
	}
}

func (s *Session) dividendsFunc() Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Dividends",
			Description: "Dividends reports the dividend payments received, aggregated per ticker and per year.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"year": {
						Type:        genai.TypeInteger,
						Description: "Restrict the report to one calendar year. All years by default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of the dividend history.",
			},
		},
		F: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			var year int
			if v, ok := args["year"]; ok {
				f, ok := v.(float64)
				if !ok {
					return respond(id, "Dividends", "", fmt.Errorf("argument 'year' is not a number but %T", v))
				}
				year = int(f)
			}
			report, err := divtrack.NewDividendsReport(ctx, s.Book, s.Market, s.Resolver, s.Owner, s.Portfolio,
				divtrack.DividendOptions{Year: year})
			if err != nil {
				return respond(id, "Dividends", "", err)
			}
			return respond(id, "Dividends", renderer.DividendsMarkdown(report), nil)
		},
	}
}

func (s *Session) yieldFunc() Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Yields",
			Description: "Yields compares the open positions by their trailing twelve months of dividend income, yield, yield on cost and payment cadence.",
			Parameters:  &genai.Schema{Type: genai.TypeObject},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of the dividend yields.",
			},
		},
		F: func(ctx context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			report, err := divtrack.NewYieldReport(ctx, s.Book, s.Market, s.Resolver, s.Owner, s.Portfolio,
				divtrack.PositionsOptions{})
			if err != nil {
				return respond(id, "Yields", "", err)
			}
			return respond(id, "Yields", renderer.YieldMarkdown(report), nil)
		},
	}
}

func parseDate(args map[string]any) (divtrack.Date, error) {
	idate, hasDate := args["date"]
	if !hasDate {
		return divtrack.Today(), nil
	}
	sdate, ok := idate.(string)
	if !ok {
		return divtrack.Today(), fmt.Errorf("argument 'date' is not a string as expected but %T", idate)
	}

	date, err := divtrack.ParseDate(sdate)
	if err != nil {
		return divtrack.Today(), fmt.Errorf("argument 'date' must be a valid YYYY-MM-DD date, got %q", sdate)
	}

	return date, nil
}
