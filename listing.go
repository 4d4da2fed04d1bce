package divtrack

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// micRegex checks for the format: 4 uppercase alphanumeric characters.
var micRegex = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// instrumentRegex accepts private instrument identifiers: alphanumeric plus
// dash, at least 2 characters. ISINs are a subset of this shape and get the
// stricter check when they match the ISIN structure.
var instrumentRegex = regexp.MustCompile(`^[A-Z0-9-]{2,}$`)

// ListingID identifies an instrument listed on a specific trading venue,
// written as the concatenation of an instrument identifier and an exchange
// code separated by a FULL STOP ('.').
//
// Formal definition: ListingID = INSTRUMENT "." EXCHANGE
//
// The instrument identifier is preferably an ISIN (ISO 6166); any
// alphanumeric identifier is accepted for unlisted or private assets. The
// exchange code is a MIC (ISO 10383), e.g. "XNYS" or "XETR". The same
// instrument traded on two venues yields two distinct listings, which is the
// granularity positions are aggregated at.
type ListingID string

// NewListingID builds a ListingID from its constituent parts after validation.
func NewListingID(instrument, exchange string) (ListingID, error) {
	if err := ValidateInstrument(instrument); err != nil {
		return "", fmt.Errorf("invalid instrument: %w", err)
	}
	if err := ValidateMIC(exchange); err != nil {
		return "", fmt.Errorf("invalid exchange: %w", err)
	}
	return ListingID(instrument + "." + exchange), nil
}

// ParseListingID validates the "INSTRUMENT.EXCHANGE" format and returns the ID.
func ParseListingID(s string) (ListingID, error) {
	instrument, exchange, err := split(s)
	if err != nil {
		return "", err
	}
	return NewListingID(instrument, exchange)
}

func split(s string) (instrument, exchange string, err error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid listing id %q: want exactly one '.'", s)
	}
	return parts[0], parts[1], nil
}

// Instrument returns the instrument part of the identifier, or "" if the ID
// is malformed.
func (id ListingID) Instrument() string {
	instrument, _, _ := split(string(id))
	return instrument
}

// Exchange returns the exchange code part of the identifier, or "" if the ID
// is malformed.
func (id ListingID) Exchange() string {
	_, exchange, _ := split(string(id))
	return exchange
}

// String implements the fmt.Stringer interface.
func (id ListingID) String() string { return string(id) }

// ValidateInstrument checks an instrument identifier. Identifiers that look
// like ISINs must carry a valid check digit; anything else only has to match
// the private identifier shape.
func ValidateInstrument(instrument string) error {
	if isinRegex.MatchString(instrument) {
		return ValidateISIN(instrument)
	}
	if !instrumentRegex.MatchString(instrument) {
		return fmt.Errorf("must be alphanumeric (plus dash), at least 2 characters, got %q", instrument)
	}
	return nil
}

// ValidateISIN checks if a string is a validly formatted ISIN.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// Convert letters to numbers for the check digit calculation.
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// Luhn variation over the numeric expansion.
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit, _ := strconv.Atoi(string(digits[i]))
		if isSecond {
			digit *= 2
		}
		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	expected := (10 - (sum % 10)) % 10
	actual, _ := strconv.Atoi(string(isin[11]))
	if expected != actual {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expected, actual)
	}
	return nil
}

// ValidateMIC checks if a string conforms to the MIC (ISO 10383) format.
// It validates the format only, not whether the MIC is officially registered.
func ValidateMIC(mic string) error {
	if len(mic) != 4 {
		return fmt.Errorf("invalid length: must be 4 characters, got %d", len(mic))
	}
	if !micRegex.MatchString(mic) {
		return fmt.Errorf("invalid format: must be 4 uppercase alphanumeric characters")
	}
	return nil
}
