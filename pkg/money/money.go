// Package money provides currency-safe monetary values using integer minor
// units. It wraps go-money for ISO-4217 handling and shopspring/decimal for
// precise string parsing, so imported amounts never pass through binary
// floats.
package money

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	CNY = "CNY" // Chinese Yuan
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	GBP = "GBP" // British Pound
	JPY = "JPY" // Japanese Yen (no decimal places)
	HKD = "HKD" // Hong Kong Dollar
)

// DefaultCurrency is assumed when an imported account names no currency.
const DefaultCurrency = CNY

// Money is a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (cents) and a currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// Zero returns a zero value for the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// NewFromDecimal converts a decimal amount to minor units per the currency's
// ISO-4217 fraction.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(DefaultCurrency)
	}
	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()
	return New(cents, currencyCode)
}

// NewFromString parses a display amount like "1234.56", "1,234.56" or
// "¥1234.56" into a Money value.
func NewFromString(amount, currencyCode string) (*Money, error) {
	d, err := ParseDecimal(amount)
	if err != nil {
		return nil, err
	}
	return NewFromDecimal(d, currencyCode), nil
}

// ParseDecimal parses a display amount into a decimal, stripping currency
// symbols and thousands separators first.
func ParseDecimal(amount string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(amount)
	for _, sym := range []string{"¥", "￥", "$", "€", "£", "₹"} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d, nil
}

// ParseCents parses a display amount straight to minor units of the given
// currency.
func ParseCents(amount, currencyCode string) (int64, error) {
	m, err := NewFromString(amount, currencyCode)
	if err != nil {
		return 0, err
	}
	return m.Amount(), nil
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

// ToDecimal returns the amount as a decimal in major units.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
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

// Subtract subtracts other from m.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		if other == nil || other.m == nil {
			return Zero(DefaultCurrency), nil
		}
		return &Money{m: other.m.Negative()}, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display renders the value with its currency symbol.
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// NormalizeCurrency maps an imported currency label (code or Chinese name)
// to an ISO code, defaulting when unrecognized.
func NormalizeCurrency(label string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(label))
	switch cleaned {
	case "":
		return DefaultCurrency
	case "人民币", "元":
		return CNY
	case "美元":
		return USD
	case "欧元":
		return EUR
	case "港币", "港元":
		return HKD
	case "日元":
		return JPY
	}
	if money.GetCurrency(cleaned) != nil {
		return cleaned
	}
	return DefaultCurrency
}
