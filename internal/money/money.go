// Package money provides the immutable Currency and Money values used by
// accounts and transactions. Amounts are kept in the currency's smallest unit.
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency  = aggregate.New(aggregate.KindInvalidArgument, "invalid currency")
	ErrCurrencyMismatch = aggregate.New(aggregate.KindCurrencyMismatch, "currency mismatch")
	ErrAmountOverflow   = aggregate.New(aggregate.KindInvalidArgument, "amount overflows int64")
)

// Currency identifies a currency by code and the number of decimal places of
// its smallest unit (2 for USD cents, 3 for BHD fils).
type Currency struct {
	code  string
	scale int
}

// NewCurrency validates and builds a Currency. The code is trimmed and upper-cased.
func NewCurrency(code string, scale int) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Currency{}, aggregate.Fail(ErrInvalidCurrency, "new currency", "code is required")
	}
	if scale < 0 {
		return Currency{}, aggregate.Fail(ErrInvalidCurrency, "new currency", fmt.Sprintf("negative scale %d", scale))
	}
	return Currency{code: code, scale: scale}, nil
}

// MustCurrency is NewCurrency for package-level values and tests.
func MustCurrency(code string, scale int) Currency {
	c, err := NewCurrency(code, scale)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Currency) Code() string   { return c.code }
func (c Currency) Scale() int     { return c.scale }
func (c Currency) IsZero() bool   { return c.code == "" }
func (c Currency) String() string { return c.code }

// Money is an amount in the smallest unit of its currency.
type Money struct {
	amount   int64
	currency Currency
}

// New returns amount smallest units of c.
func New(amount int64, c Currency) Money {
	return Money{amount: amount, currency: c}
}

// Zero returns the zero amount of c.
func Zero(c Currency) Money {
	return Money{currency: c}
}

func (m Money) Amount() int64      { return m.amount }
func (m Money) Currency() Currency { return m.currency }
func (m Money) IsZero() bool       { return m.amount == 0 }
func (m Money) IsPositive() bool   { return m.amount > 0 }
func (m Money) IsNegative() bool   { return m.amount < 0 }
func (m Money) Equal(o Money) bool { return m == o }
func (m Money) Negate() Money      { return Money{amount: -m.amount, currency: m.currency} }
func (m Money) String() string     { return m.Format(false) }

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.amount < 0 {
		return m.Negate()
	}
	return m
}

// Add returns m + o. Both operands must share a currency.
func (m Money) Add(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, aggregate.Fail(ErrCurrencyMismatch, "add money",
			fmt.Sprintf("%s and %s", m.currency.code, o.currency.code))
	}
	if (o.amount > 0 && m.amount > math.MaxInt64-o.amount) ||
		(o.amount < 0 && m.amount < math.MinInt64-o.amount) {
		return Money{}, aggregate.Fail(ErrAmountOverflow, "add money", "")
	}
	return Money{amount: m.amount + o.amount, currency: m.currency}, nil
}

// Sub returns m - o.
func (m Money) Sub(o Money) (Money, error) {
	return m.Add(o.Negate())
}

// Format renders the amount with the currency scale applied, prefixed by the
// currency symbol when withSymbol is set and the default catalog knows one,
// otherwise by the currency code.
func (m Money) Format(withSymbol bool) string {
	return m.FormatWith(DefaultCatalog, withSymbol)
}

// FormatWith is Format with an explicit metadata catalog.
func (m Money) FormatWith(cat Catalog, withSymbol bool) string {
	scale := int32(m.currency.scale)
	number := decimal.New(m.amount, -scale).StringFixed(scale)

	prefix := m.currency.code
	if withSymbol && cat != nil {
		if sym, ok := cat.Symbol(m.currency.code); ok {
			prefix = sym
		}
	}
	if prefix == "" {
		return number
	}
	return prefix + " " + number
}
