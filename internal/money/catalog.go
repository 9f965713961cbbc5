package money

import (
	"fmt"
	"strings"

	"github.com/dukerupert/householder/internal/aggregate"
	"golang.org/x/text/currency"
)

// Catalog supplies currency metadata for display and defaults.
type Catalog interface {
	// Symbol returns the display symbol for an ISO code.
	Symbol(code string) (string, bool)
	// FractionDigits returns the default number of decimals for an ISO code.
	FractionDigits(code string) (int, bool)
}

// DefaultCatalog is used by Money.Format and CurrencyFor.
var DefaultCatalog Catalog = NewISOCatalog(nil)

var defaultSymbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"AUD": "A$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "CN¥",
	"INR": "₹",
	"KRW": "₩",
	"ILS": "₪",
	"NGN": "₦",
	"PLN": "zł",
	"BRL": "R$",
	"CHF": "CHF",
}

// ISOCatalog resolves fraction digits from the ISO 4217 tables shipped with
// golang.org/x/text and symbols from a fixed table.
type ISOCatalog struct {
	symbols map[string]string
}

// NewISOCatalog returns a catalog using symbols, or the built-in symbol table
// when symbols is nil.
func NewISOCatalog(symbols map[string]string) *ISOCatalog {
	if symbols == nil {
		symbols = defaultSymbols
	}
	return &ISOCatalog{symbols: symbols}
}

func (c *ISOCatalog) Symbol(code string) (string, bool) {
	sym, ok := c.symbols[strings.ToUpper(code)]
	return sym, ok
}

func (c *ISOCatalog) FractionDigits(code string) (int, bool) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return 0, false
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale, true
}

// CurrencyFor builds the Currency for an ISO code using the default catalog's
// fraction digits.
func CurrencyFor(code string) (Currency, error) {
	scale, ok := DefaultCatalog.FractionDigits(code)
	if !ok {
		return Currency{}, aggregate.Fail(ErrInvalidCurrency, "currency for", fmt.Sprintf("unknown ISO code %q", code))
	}
	return NewCurrency(code, scale)
}
