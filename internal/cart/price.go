package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is the glyph prefixed to every formatted catalog price.
const DefaultCurrencySymbol = "₺"

// ParsePrice reads a formatted price such as "₺10,50": the currency symbol is
// removed, the decimal comma becomes a decimal point and the rest is parsed.
// Thousands separators are not understood; "₺1.234,50" fails to parse.
func ParsePrice(text, currencySymbol string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if currencySymbol != "" {
		s = strings.ReplaceAll(s, currencySymbol, "")
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrParseFailure, text)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrParseFailure, text)
	}
	return d, nil
}
