package values

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is a monetary amount in integer minor units together with its
// currency. 35.00 EUR is {amount: 3500, currency: EUR}.
type Price struct {
	amount   int64
	currency Currency
}

// NewPrice validates a minor-unit amount against a currency code.
func NewPrice(amountMinorUnits int64, currencyCode string) (Price, error) {
	currency, err := NewCurrency(currencyCode)
	if err != nil {
		return Price{}, err
	}
	if amountMinorUnits < 0 {
		return Price{}, fmt.Errorf("%w: negative amount %d", ErrInvalidAmount, amountMinorUnits)
	}
	return Price{amount: amountMinorUnits, currency: currency}, nil
}

// PriceFromDecimal canonicalizes a decimal major-unit amount, rejecting
// values that cannot be represented exactly at the currency's
// minor-unit scale (10.505 EUR is invalid, 10.50 EUR is 1050 cents).
func PriceFromDecimal(rawAmount decimal.Decimal, currencyCode string) (Price, error) {
	currency, err := NewCurrency(currencyCode)
	if err != nil {
		return Price{}, err
	}
	scaled := rawAmount.Shift(currency.MinorUnitExponent())
	if !scaled.IsInteger() {
		return Price{}, fmt.Errorf("%w: %s has sub-minor-unit precision for %s", ErrInvalidAmount, rawAmount, currency)
	}
	if !scaled.BigInt().IsInt64() {
		return Price{}, fmt.Errorf("%w: %s %s", ErrAmountOverflow, rawAmount, currency)
	}
	minorUnits := scaled.IntPart()
	if minorUnits < 0 {
		return Price{}, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, rawAmount)
	}
	return Price{amount: minorUnits, currency: currency}, nil
}

// AmountMinorUnits returns the integer minor-unit amount.
func (price Price) AmountMinorUnits() int64 {
	return price.amount
}

// Currency returns the price currency.
func (price Price) Currency() Currency {
	return price.currency
}

// Decimal returns the amount in major units as an exact decimal.
func (price Price) Decimal() decimal.Decimal {
	return decimal.New(price.amount, -price.currency.MinorUnitExponent())
}

// Add sums two prices of the same currency.
func (price Price) Add(other Price) (Price, error) {
	if price.currency != other.currency {
		return Price{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, price.currency, other.currency)
	}
	sum := price.amount + other.amount
	if sum < price.amount {
		return Price{}, fmt.Errorf("%w: adding %d and %d", ErrAmountOverflow, price.amount, other.amount)
	}
	return Price{amount: sum, currency: price.currency}, nil
}

// IsZero reports whether the price is the unset zero value.
func (price Price) IsZero() bool {
	return price.currency.IsZero()
}

// String formats the price for display, e.g. "10.50 EUR" or "1000 JPY".
func (price Price) String() string {
	return fmt.Sprintf("%s %s", price.Decimal().StringFixed(price.currency.MinorUnitExponent()), price.currency)
}
