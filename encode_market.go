package divtrack

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Market data persists in a folder as three human-readable, git-friendly
// JSONL files:
//
//	listings.jsonl  one listing definition per line
//	prices.jsonl    one day per line: {"on":"2025-07-01","AAPL":211.2,...}
//	rates.jsonl     one day per line: {"on":"2025-07-01","EURUSD":1.17,...}
//
// Price lines key on the ticker for readability; the listings file maps
// tickers back to listing IDs.

const attrOn = "on"

const (
	listingsFile = "listings.jsonl"
	pricesFile   = "prices.jsonl"
	ratesFile    = "rates.jsonl"
)

// jlisting is the persisted form of a listing definition.
type jlisting struct {
	Ticker   string `json:"ticker"`
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency"`
}

// decodeListings parses the listing definition file. filename is for error
// messages only.
func (m *MarketData) decodeListings(filename string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var jl jlisting
		if err := json.Unmarshal(line, &jl); err != nil {
			return fmt.Errorf("format error in %q on line %q: %w", filename, string(line), err)
		}
		l, err := NewListing(ListingID(jl.ID), jl.Ticker, jl.Name, jl.Currency)
		if err != nil {
			return fmt.Errorf("format error in %q: %w", filename, err)
		}
		if err := m.Add(l); err != nil {
			return fmt.Errorf("format error in %q: %w", filename, err)
		}
	}
	return scanner.Err()
}

// decodeSeriesLine decodes one {"on":date, key:number, ...} line and hands
// each (key, value) pair to record.
func decodeSeriesLine(filename string, i int, txt string, record func(key string, on Date, v float64) error) error {
	if strings.TrimSpace(txt) == "" {
		return nil
	}
	jobj := make(map[string]any)
	if err := json.Unmarshal([]byte(txt), &jobj); err != nil {
		return fmt.Errorf("parse error %s:%v: not a correct json: %w", filename, i, err)
	}

	jvalue, ok := jobj[attrOn]
	if !ok {
		return fmt.Errorf("parse error %s:%v: missing the property %q with a date", filename, i, attrOn)
	}
	jstring, ok := jvalue.(string)
	if !ok {
		return fmt.Errorf("parse error %s:%v: property %q must be of type 'string'", filename, i, attrOn)
	}
	on, err := ParseDate(jstring)
	if err != nil {
		return fmt.Errorf("parse error %s:%v: property %q must be a valid date: %w", filename, i, attrOn, err)
	}

	for key, value := range jobj {
		if key == attrOn {
			continue
		}
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("parse error %s:%v: property %q must be of type 'number'", filename, i, key)
		}
		if err := record(key, on, v); err != nil {
			return fmt.Errorf("parse error %s:%v: %w", filename, i, err)
		}
	}
	return nil
}

func decodeSeriesFile(filename string, record func(key string, on Date, v float64) error) error {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // missing series file is an empty series
		}
		return fmt.Errorf("load error: cannot open %q: %w", filename, err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	i := 0
	for scanner.Scan() {
		i++
		if err := decodeSeriesLine(filename, i, scanner.Text(), record); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// DecodeMarketData reads a folder containing listing definitions, prices and
// exchange rates, and returns a MarketData object. A missing folder yields an
// empty database.
func DecodeMarketData(folder string) (*MarketData, error) {
	m := NewMarketData()

	f, err := os.Open(filepath.Join(folder, listingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("load error: cannot open listings file: %w", err)
	}
	defer f.Close()
	if err := m.decodeListings(listingsFile, f); err != nil {
		return nil, err
	}

	err = decodeSeriesFile(filepath.Join(folder, pricesFile), func(ticker string, on Date, v float64) error {
		l := m.ByTicker(ticker)
		if l == nil {
			return fmt.Errorf("property %q must be an existing ticker", ticker)
		}
		return m.AddPrice(l.ID(), on, v)
	})
	if err != nil {
		return nil, err
	}

	err = decodeSeriesFile(filepath.Join(folder, ratesFile), func(key string, on Date, v float64) error {
		if len(key) != 6 {
			return fmt.Errorf("property %q must be a 6-letter currency pair", key)
		}
		return m.AddRate(key[:3], key[3:], on, v)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// encodeSeriesLine writes one day of a keyed series as a single JSONL line.
func encodeSeriesLine(w io.Writer, day Date, keys []string, values []float64) error {
	var jw jsonObjectWriter
	jw.Append(attrOn, day.String())
	for i, key := range keys {
		// json does not support NaN, and a checked value should never be one.
		if math.IsNaN(values[i]) {
			continue
		}
		jw.Append(key, values[i])
	}
	b, err := jw.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// series is a named History, the unit of the day-oriented encoders.
type series struct {
	key     string
	history *History[float64]
}

// encodeSeries writes a set of histories day by day, one line per day, keys
// in the given order.
func encodeSeries(w io.Writer, list []series) error {
	// collect the union of days
	dayset := make(map[Date]struct{})
	for _, s := range list {
		for day := range s.history.Values() {
			dayset[day] = struct{}{}
		}
	}
	days := make([]Date, 0, len(dayset))
	for day := range dayset {
		days = append(days, day)
	}
	slices.SortFunc(days, func(a, b Date) int {
		switch {
		case a.Before(b):
			return -1
		case a.After(b):
			return 1
		default:
			return 0
		}
	})

	for _, day := range days {
		var keys []string
		var values []float64
		for _, s := range list {
			if v, ok := s.history.Get(day); ok {
				keys = append(keys, s.key)
				values = append(values, v)
			}
		}
		if err := encodeSeriesLine(w, day, keys, values); err != nil {
			return err
		}
	}
	return nil
}

// EncodeMarketData encodes the market data into a folder, creating the
// listings, prices and rates files. The folder is created if needed.
func EncodeMarketData(folder string, m *MarketData) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("persist error: cannot create folder %q: %w", folder, err)
	}

	write := func(name string, encode func(io.Writer) error) error {
		filename := filepath.Join(folder, name)
		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("persist error: cannot create file %q: %w", filename, err)
		}
		defer f.Close()
		return encode(f)
	}

	err := write(listingsFile, func(w io.Writer) error {
		for l := range m.Listings() {
			jl := jlisting{Ticker: l.Ticker(), ID: l.ID().String(), Name: l.Name(), Currency: l.Currency()}
			data, err := json.Marshal(jl)
			if err != nil {
				return fmt.Errorf("persist error: cannot marshal listing %q: %w", l.Ticker(), err)
			}
			if _, err := w.Write(append(data, '\n')); err != nil {
				return fmt.Errorf("persist error: cannot write to file: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = write(pricesFile, func(w io.Writer) error {
		var list []series
		for l := range m.Listings() {
			list = append(list, series{key: l.Ticker(), history: l.Prices()})
		}
		return encodeSeries(w, list)
	})
	if err != nil {
		return err
	}

	return write(ratesFile, func(w io.Writer) error {
		var list []series
		for _, p := range m.Pairs() {
			list = append(list, series{key: p, history: m.rates[p]})
		}
		return encodeSeries(w, list)
	})
}
