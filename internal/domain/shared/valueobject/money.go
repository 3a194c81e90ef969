package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	INR Currency = "INR" // Indian Rupee
	CAD Currency = "CAD" // Canadian Dollar
	AUD Currency = "AUD" // Australian Dollar
	JPY Currency = "JPY" // Japanese Yen
	CNY Currency = "CNY" // Chinese Yuan
)

// DefaultCurrency is the default currency for groups, goals and contributions
const DefaultCurrency = USD

var supportedCurrencies = map[Currency]bool{
	USD: true, EUR: true, GBP: true, INR: true,
	CAD: true, AUD: true, JPY: true, CNY: true,
}

// ErrUnsupportedCurrency is returned for codes outside the supported set
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// SupportedCurrencies lists the accepted codes in a stable order
func SupportedCurrencies() []Currency {
	return []Currency{USD, EUR, GBP, INR, CAD, AUD, JPY, CNY}
}

// ParseCurrency normalizes and validates a currency code.
// An empty code resolves to DefaultCurrency.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	if _, err := currency.ParseISO(code); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	c := Currency(code)
	if !supportedCurrencies[c] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return c, nil
}

// IsValid reports whether the currency is in the supported set
func (c Currency) IsValid() bool {
	return supportedCurrencies[c]
}

// Unit returns the x/text currency unit
func (c Currency) Unit() currency.Unit {
	u, err := currency.ParseISO(string(c))
	if err != nil {
		return currency.XXX
	}
	return u
}

// Scale returns the number of minor-unit digits (2 for USD, 0 for JPY)
func (c Currency) Scale() int32 {
	scale, _ := currency.Standard.Rounding(c.Unit())
	return int32(scale)
}

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, c Currency) (Money, error) {
	if !c.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, c)
	}
	return Money{amount: amount, currency: c}, nil
}

// MustMoney is NewMoney for constants in tests and seeds
func MustMoney(amount string, c Currency) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), c)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero-value Money in the specified currency
func Zero(c Currency) Money {
	return Money{amount: decimal.Zero, currency: c}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns the sum; currencies must match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference; currencies must match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Round rounds to the currency's minor unit
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(m.currency.Scale()), currency: m.currency}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns "<amount> <code>" with the currency's scale
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.Scale()), m.currency)
}

// Format renders the amount with the currency symbol for the given language tag
func (m Money) Format(tag language.Tag) string {
	f, _ := m.amount.Round(m.currency.Scale()).Float64()
	return message.NewPrinter(tag).Sprint(currency.Symbol(m.currency.Unit().Amount(f)))
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler and validates the currency
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	c, err := ParseCurrency(v.Currency)
	if err != nil {
		return err
	}
	m.amount = amount
	m.currency = c
	return nil
}
