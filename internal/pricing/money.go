package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	dErrors "dealer/pkg/domain-errors"
)

// Cents is the number of fractional digits every persisted amount carries.
const Cents = 2

// Money is an exact decimal amount. Arithmetic never rounds; rounding happens
// only where the calculator states it does.
type Money struct {
	value decimal.Decimal
}

func Zero() Money { return Money{} }

// NewMoney wraps a decimal without validation.
func NewMoney(d decimal.Decimal) Money { return Money{value: d} }

// ParseMoney parses a decimal string such as "20000.00". More than two
// fractional digits is rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, dErrors.Wrap(err, dErrors.CodeInvalidAmount, fmt.Sprintf("invalid amount %q", s))
	}
	m := Money{value: d}
	if !m.HasValidPrecision() {
		return Money{}, dErrors.Newf(dErrors.CodeInvalidAmount, "amount %s has more than %d decimal digits", s, Cents)
	}
	return m, nil
}

// MustParseMoney is ParseMoney for literals in tests and seed data.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.value }

func (m Money) Add(n Money) Money       { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money       { return Money{value: m.value.Sub(n.value)} }
func (m Money) MulInt(q int) Money      { return Money{value: m.value.Mul(decimal.NewFromInt(int64(q)))} }
func (m Money) DivInt(q int) Money      { return Money{value: m.value.Div(decimal.NewFromInt(int64(q)))} }
func (m Money) Equal(n Money) bool      { return m.value.Equal(n.value) }
func (m Money) IsZero() bool            { return m.value.IsZero() }
func (m Money) IsPositive() bool        { return m.value.IsPositive() }
func (m Money) IsNegative() bool        { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool   { return m.value.LessThan(n.value) }
func (m Money) Cmp(n Money) int         { return m.value.Cmp(n.value) }
func (m Money) RoundCents() Money       { return Money{value: m.value.Round(Cents)} }
func (m Money) InexactFloat64() float64 { return m.value.InexactFloat64() }

// HasValidPrecision reports whether the amount fits in whole cents.
func (m Money) HasValidPrecision() bool {
	return m.value.Equal(m.value.Truncate(Cents))
}

// String renders the amount with exactly two decimals, e.g. "18000.00".
func (m Money) String() string {
	return m.value.StringFixed(Cents)
}

// Format renders the amount for display in the given ISO currency, e.g. "$18,000.00".
func (m Money) Format(currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	return money.New(minor, currency).Display()
}

// MarshalJSON encodes the amount as a fixed two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.value = d
	return nil
}

func (m *Money) Scan(src any) error {
	return m.value.Scan(src)
}

func (m Money) Value() (driver.Value, error) {
	return m.value.StringFixed(Cents), nil
}
