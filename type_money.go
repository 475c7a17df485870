package keepbook

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a display-only monetary value. Engine arithmetic stays in
// exact decimal strings; Money exists so reports can show totals with the
// currency's symbol and fraction conventions.
type Money struct {
	value *money.Money
}

// NewMoney creates a Money from an exact decimal amount in major units.
// An unknown currency yields the zero Money.
func NewMoney(amount decimal.Decimal, currency string) Money {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return Money{}
	}
	factor := decimal.New(1, int32(cur.Fraction))
	return Money{money.New(amount.Mul(factor).Round(0).IntPart(), currency)}
}

// ParseMoney creates a Money from an exact decimal string.
func ParseMoney(amount, currency string) (Money, error) {
	d, err := ParseDecimal(amount)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d, currency), nil
}

// String returns the display representation of the money value.
func (m Money) String() string {
	if m.value == nil {
		return ""
	}
	return m.value.Display()
}

// SignedString returns the display representation with an explicit sign.
func (m Money) SignedString() string {
	if m.value == nil {
		return ""
	}
	if m.value.IsPositive() {
		return "+" + m.value.Display()
	}
	return m.value.Display()
}

// IsZero returns true for the zero Money or a zero amount.
func (m Money) IsZero() bool { return m.value == nil || m.value.IsZero() }
