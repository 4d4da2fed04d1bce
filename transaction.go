package divtrack

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying transaction commands.
type CommandType string

// Command types used for identifying transactions in the ledger.
const (
	CmdBuy      CommandType = "buy"
	CmdSell     CommandType = "sell"
	CmdDividend CommandType = "dividend"
	CmdTax      CommandType = "tax"
	CmdSplit    CommandType = "split"
)

// Transaction defines the common interface for all financial events recorded
// in the ledger.
type Transaction interface {
	What() CommandType // What returns the command type (e.g., "buy", "dividend").
	When() Date        // When returns the date on which the transaction occurred.
	Where() string     // Where returns the portfolio the transaction belongs to.
	Listing() ListingID
	Equal(Transaction) bool
	Validate(b *Book, m *MarketData) (Transaction, error)
}

type baseTx struct {
	Command   CommandType `json:"command"`
	Date      Date        `json:"date"`
	Portfolio string      `json:"portfolio"`
	Security  ListingID   `json:"security"`
	Memo      string      `json:"memo,omitempty"`
}

func (t baseTx) What() CommandType  { return t.Command }
func (t baseTx) When() Date         { return t.Date }
func (t baseTx) Where() string      { return t.Portfolio }
func (t baseTx) Listing() ListingID { return t.Security }

// SetMemo attaches an optional note to the transaction.
func (t *baseTx) SetMemo(memo string) { t.Memo = memo }

// MarshalJSON implements the json.Marshaler interface for baseTx.
func (t baseTx) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Append("date", t.Date)
	w.Append("portfolio", t.Portfolio)
	w.Append("security", t.Security)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// validate checks the base fields shared by all transactions. A zero date is
// quick-fixed to today.
func (t *baseTx) validate(b *Book, m *MarketData) error {
	if t.Date.IsZero() {
		t.Date = Today()
	}
	if t.Portfolio == "" {
		return errors.New("portfolio id is missing")
	}
	if !b.Has(t.Portfolio) {
		return fmt.Errorf("portfolio %q: %w", t.Portfolio, ErrPortfolioNotFound)
	}
	if _, err := ParseListingID(t.Security.String()); err != nil {
		return err
	}
	if m.Listing(t.Security) == nil {
		return fmt.Errorf("listing %q not declared in market data", t.Security)
	}
	return nil
}

// amountTx is a decoding helper reading an amount in two fields.
type amountTx struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountTx) Money() Money { return M(a.Amount, a.Currency) }

// Buy represents a purchase of a quantity of a listing for a total amount.
type Buy struct {
	baseTx
	Quantity float64 // number of shares or units bought
	Amount   Money   // total cost of the purchase
}

// NewBuy creates a new Buy transaction.
func NewBuy(day Date, portfolio string, listing ListingID, quantity float64, amount Money) Buy {
	return Buy{
		baseTx:   baseTx{Command: CmdBuy, Date: day, Portfolio: portfolio, Security: listing},
		Quantity: quantity,
		Amount:   amount,
	}
}

// MarshalJSON implements the json.Marshaler interface for Buy.
func (t Buy) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("quantity", decimal.NewFromFloat(t.Quantity))
	w.EmbedFrom(t.Amount)
	return w.MarshalJSON()
}

// UnmarshalJSON handles the structure where amount and currency are separate
// fields.
func (t *Buy) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseTx
		amountTx
		Quantity float64 `json:"quantity"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseTx = temp.baseTx
	t.Quantity = temp.Quantity
	t.Amount = temp.Money()
	return nil
}

func (t Buy) Equal(other Transaction) bool {
	o, ok := other.(Buy)
	return ok && t.baseTx == o.baseTx && t.Quantity == o.Quantity && t.Amount.Equal(o.Amount)
}

// Validate ensures quantity and amount are positive and the currency matches
// the listing currency, quick-fixing an empty currency.
func (t Buy) Validate(b *Book, m *MarketData) (Transaction, error) {
	if err := t.baseTx.validate(b, m); err != nil {
		return t, err
	}
	if t.Quantity <= 0 {
		return t, fmt.Errorf("buy quantity must be positive, got %v", t.Quantity)
	}
	if !t.Amount.IsPositive() {
		return t, fmt.Errorf("buy amount must be positive, got %s", t.Amount)
	}
	amount, err := fixCurrency(t.Amount, m.Listing(t.Security))
	if err != nil {
		return t, err
	}
	t.Amount = amount
	return t, nil
}

// Sell represents a sale of a quantity of a listing for a total amount.
type Sell struct {
	baseTx
	Quantity float64 // number of shares or units sold
	Amount   Money   // total proceeds from the sale
}

// NewSell creates a new Sell transaction. A quantity of 0 means "sell all";
// the actual quantity is resolved during validation from the position on the
// transaction date.
func NewSell(day Date, portfolio string, listing ListingID, quantity float64, amount Money) Sell {
	return Sell{
		baseTx:   baseTx{Command: CmdSell, Date: day, Portfolio: portfolio, Security: listing},
		Quantity: quantity,
		Amount:   amount,
	}
}

// MarshalJSON implements the json.Marshaler interface for Sell.
func (t Sell) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("quantity", decimal.NewFromFloat(t.Quantity))
	w.EmbedFrom(t.Amount)
	return w.MarshalJSON()
}

// UnmarshalJSON handles the structure where amount and currency are separate
// fields.
func (t *Sell) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseTx
		amountTx
		Quantity float64 `json:"quantity"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseTx = temp.baseTx
	t.Quantity = temp.Quantity
	t.Amount = temp.Money()
	return nil
}

func (t Sell) Equal(other Transaction) bool {
	o, ok := other.(Sell)
	return ok && t.baseTx == o.baseTx && t.Quantity == o.Quantity && t.Amount.Equal(o.Amount)
}

// Validate resolves a "sell all" quantity, then ensures the final quantity is
// positive and covered by the position on the transaction date.
func (t Sell) Validate(b *Book, m *MarketData) (Transaction, error) {
	if err := t.baseTx.validate(b, m); err != nil {
		return t, err
	}
	if !t.Amount.IsPositive() {
		return t, fmt.Errorf("sell amount must be positive, got %s", t.Amount)
	}
	amount, err := fixCurrency(t.Amount, m.Listing(t.Security))
	if err != nil {
		return t, err
	}
	t.Amount = amount

	held := b.Ledger().quantity(t.Portfolio, t.Security, t.Date)
	if t.Quantity == 0 {
		// quick fix, sell all.
		t.Quantity = held
	}
	if t.Quantity <= 0 {
		return t, fmt.Errorf("sell quantity must be positive, got %v", t.Quantity)
	}
	if held+Epsilon < t.Quantity {
		return t, fmt.Errorf("on %s, cannot sell %v of %s, position is only %v", t.When(), t.Quantity, t.Security, held)
	}
	return t, nil
}

// Dividend represents a cash dividend received for a held listing. The amount
// is the total payout, not per share.
type Dividend struct {
	baseTx
	Amount Money // total dividend received
}

// NewDividend creates a new Dividend transaction.
func NewDividend(day Date, portfolio string, listing ListingID, amount Money) Dividend {
	return Dividend{
		baseTx: baseTx{Command: CmdDividend, Date: day, Portfolio: portfolio, Security: listing},
		Amount: amount,
	}
}

// MarshalJSON implements the json.Marshaler interface for Dividend.
func (t Dividend) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.EmbedFrom(t.Amount)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Dividend.
func (t *Dividend) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseTx
		amountTx
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseTx = temp.baseTx
	t.Amount = temp.Money()
	return nil
}

func (t Dividend) Equal(other Transaction) bool {
	o, ok := other.(Dividend)
	return ok && t.baseTx == o.baseTx && t.Amount.Equal(o.Amount)
}

// Validate ensures the dividend amount is positive, quick-fixing an empty
// currency from the listing.
func (t Dividend) Validate(b *Book, m *MarketData) (Transaction, error) {
	if err := t.baseTx.validate(b, m); err != nil {
		return t, err
	}
	if !t.Amount.IsPositive() {
		return t, errors.New("dividend must have a positive amount")
	}
	amount, err := fixCurrency(t.Amount, m.Listing(t.Security))
	if err != nil {
		return t, err
	}
	t.Amount = amount
	return t, nil
}

// Tax represents withholding tax retained on a dividend payment. It never
// affects quantity or cost basis, only net dividend reporting.
type Tax struct {
	baseTx
	Amount Money // tax withheld, recorded positive
}

// NewTax creates a new Tax transaction.
func NewTax(day Date, portfolio string, listing ListingID, amount Money) Tax {
	return Tax{
		baseTx: baseTx{Command: CmdTax, Date: day, Portfolio: portfolio, Security: listing},
		Amount: amount,
	}
}

// MarshalJSON implements the json.Marshaler interface for Tax.
func (t Tax) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.EmbedFrom(t.Amount)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Tax.
func (t *Tax) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseTx
		amountTx
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseTx = temp.baseTx
	t.Amount = temp.Money()
	return nil
}

func (t Tax) Equal(other Transaction) bool {
	o, ok := other.(Tax)
	return ok && t.baseTx == o.baseTx && t.Amount.Equal(o.Amount)
}

// Validate ensures the tax amount is positive, quick-fixing an empty currency
// from the listing.
func (t Tax) Validate(b *Book, m *MarketData) (Transaction, error) {
	if err := t.baseTx.validate(b, m); err != nil {
		return t, err
	}
	if !t.Amount.IsPositive() {
		return t, errors.New("tax must have a positive amount")
	}
	amount, err := fixCurrency(t.Amount, m.Listing(t.Security))
	if err != nil {
		return t, err
	}
	t.Amount = amount
	return t, nil
}

// Split represents a stock split event, num new shares for den old shares.
type Split struct {
	baseTx
	Numerator   int64 `json:"num"`
	Denominator int64 `json:"den"`
}

// NewSplit creates a new Split transaction.
func NewSplit(day Date, portfolio string, listing ListingID, num, den int64) Split {
	return Split{
		baseTx:      baseTx{Command: CmdSplit, Date: day, Portfolio: portfolio, Security: listing},
		Numerator:   num,
		Denominator: den,
	}
}

// MarshalJSON implements the json.Marshaler interface for Split.
func (t Split) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("num", t.Numerator)
	w.Append("den", t.Denominator)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Split.
func (t *Split) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseTx
		Numerator   int64 `json:"num"`
		Denominator int64 `json:"den"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	if temp.Denominator == 0 {
		temp.Denominator = 1
	}
	t.baseTx = temp.baseTx
	t.Numerator = temp.Numerator
	t.Denominator = temp.Denominator
	return nil
}

func (t Split) Equal(other Transaction) bool {
	o, ok := other.(Split)
	return ok && t.baseTx == o.baseTx && t.Numerator == o.Numerator && t.Denominator == o.Denominator
}

// Factor returns the quantity multiplier of the split.
func (t Split) Factor() float64 { return float64(t.Numerator) / float64(t.Denominator) }

// Validate checks the Split transaction's fields.
func (t Split) Validate(b *Book, m *MarketData) (Transaction, error) {
	if err := t.baseTx.validate(b, m); err != nil {
		return t, err
	}
	if t.Numerator <= 0 {
		return t, fmt.Errorf("split numerator must be positive, got %d", t.Numerator)
	}
	if t.Denominator <= 0 {
		return t, fmt.Errorf("split denominator must be positive, got %d", t.Denominator)
	}
	return t, nil
}

// fixCurrency defaults an empty transaction currency to the listing currency
// and rejects a mismatch.
func fixCurrency(amount Money, listing *Listing) (Money, error) {
	if listing == nil {
		return amount, errors.New("unknown listing")
	}
	if amount.Currency() == "" {
		return M(amount.value, listing.Currency()), nil
	}
	if err := ValidateCurrency(amount.Currency()); err != nil {
		return amount, err
	}
	if amount.Currency() != listing.Currency() {
		return amount, fmt.Errorf("transaction currency %s does not match listing currency %s", amount.Currency(), listing.Currency())
	}
	return amount, nil
}
