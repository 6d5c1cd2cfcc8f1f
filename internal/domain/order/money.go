package order

import "fmt"

// Money is an amount in cents of a single currency.
type Money struct {
	cents    int64
	currency string
}

// NewMoney creates a new Money value. An empty currency means usd.
func NewMoney(cents int64, currency string) Money {
	if currency == "" {
		currency = "usd"
	}
	return Money{cents: cents, currency: currency}
}

// Cents returns the amount in cents.
func (m Money) Cents() int64 {
	return m.cents
}

// Currency returns the ISO 4217 currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum of two Money values.
// Returns an error if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return NewMoney(m.cents+other.cents, m.currency), nil
}

// Multiply returns the amount multiplied by factor.
func (m Money) Multiply(factor int) Money {
	return NewMoney(m.cents*int64(factor), m.currency)
}

// String returns the amount formatted as currency units.
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.cents/100, m.cents%100, m.currency)
}
