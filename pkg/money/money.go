// Package money provides currency-safe financial arithmetic using integer
// minor units (cents) with go-money for formatting and shopspring/decimal
// for non-integer math.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217).
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
)

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (cents) and a currency code.
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{m: money.New(amountMinor, currencyCode)}
}

// NewFromDecimal creates Money from a decimal value in major units.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}
	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()
	return New(cents, currencyCode)
}

// Zero returns a zero value for the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// Add adds two values of the same currency.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Sub subtracts other from m.
func (m *Money) Sub(other *Money) (*Money, error) {
	if other == nil || other.m == nil {
		return m, nil
	}
	if m == nil || m.m == nil {
		return &Money{m: other.m.Negative()}, nil
	}
	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Percent returns pct percent of the value, rounded to the nearest cent.
func (m *Money) Percent(pct float64) *Money {
	if m == nil || m.m == nil {
		return Zero(USD)
	}
	d := decimal.NewFromInt(m.m.Amount()).Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100))
	return New(d.Round(0).IntPart(), m.Currency())
}

// Display returns a locale-formatted string, e.g. "$1,234.56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// ToDecimal converts to major units for precise calculations.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	d := decimal.NewFromInt(m.m.Amount())
	return d.Div(decimal.New(1, int32(m.m.Currency().Fraction)))
}

// String returns the amount as a plain decimal string.
func (m *Money) String() string {
	return m.ToDecimal().StringFixed(2)
}

// MarshalJSON encodes as {"amount_minor":..., "currency":...}.
func (m *Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AmountMinor int64  `json:"amount_minor"`
		Currency    string `json:"currency"`
	}{m.Amount(), m.Currency()})
}

// UnmarshalJSON decodes the MarshalJSON shape.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		AmountMinor int64  `json:"amount_minor"`
		Currency    string `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid money payload: %w", err)
	}
	if raw.Currency == "" {
		raw.Currency = USD
	}
	m.m = money.New(raw.AmountMinor, raw.Currency)
	return nil
}
