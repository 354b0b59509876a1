package values

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceFromDecimalCanonicalizesMinorUnits(test *testing.T) {
	test.Parallel()
	cases := []struct {
		name     string
		raw      string
		currency string
		amount   int64
	}{
		{name: "euro cents", raw: "35.00", currency: "EUR", amount: 3500},
		{name: "euro fraction", raw: "10.50", currency: "eur", amount: 1050},
		{name: "yen has no minor unit", raw: "1000", currency: "JPY", amount: 1000},
		{name: "dinar has three digits", raw: "1.250", currency: "BHD", amount: 1250},
	}
	for _, testCase := range cases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			raw := decimal.RequireFromString(testCase.raw)
			price, err := PriceFromDecimal(raw, testCase.currency)
			if err != nil {
				test.Fatalf("canonicalize %s %s: %v", testCase.raw, testCase.currency, err)
			}
			if price.AmountMinorUnits() != testCase.amount {
				test.Fatalf("expected %d minor units, got %d", testCase.amount, price.AmountMinorUnits())
			}
		})
	}
}

func TestPriceFromDecimalRejectsSubMinorPrecision(test *testing.T) {
	test.Parallel()
	_, err := PriceFromDecimal(decimal.RequireFromString("10.505"), "EUR")
	if !errors.Is(err, ErrInvalidAmount) {
		test.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	_, err = PriceFromDecimal(decimal.RequireFromString("10.5"), "JPY")
	if !errors.Is(err, ErrInvalidAmount) {
		test.Fatalf("expected ErrInvalidAmount for fractional yen, got %v", err)
	}
}

func TestPriceRejectsUnknownCurrency(test *testing.T) {
	test.Parallel()
	_, err := NewPrice(100, "XXQ")
	if !errors.Is(err, ErrInvalidCurrency) {
		test.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestPriceRejectsNegativeAmount(test *testing.T) {
	test.Parallel()
	_, err := NewPrice(-1, "EUR")
	if !errors.Is(err, ErrInvalidAmount) {
		test.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestPriceCanonicalizationIsIdempotent(test *testing.T) {
	test.Parallel()
	first, err := NewPrice(3500, "EUR")
	if err != nil {
		test.Fatalf("new price: %v", err)
	}
	second, err := NewPrice(first.AmountMinorUnits(), first.Currency().Code())
	if err != nil {
		test.Fatalf("re-canonicalize: %v", err)
	}
	if first != second {
		test.Fatalf("expected structural equality, got %v vs %v", first, second)
	}
}

func TestPriceAddRequiresSameCurrency(test *testing.T) {
	test.Parallel()
	euros, _ := NewPrice(100, "EUR")
	dollars, _ := NewPrice(100, "USD")
	if _, err := euros.Add(dollars); !errors.Is(err, ErrCurrencyMismatch) {
		test.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	moreEuros, _ := NewPrice(250, "EUR")
	sum, err := euros.Add(moreEuros)
	if err != nil {
		test.Fatalf("add: %v", err)
	}
	if sum.AmountMinorUnits() != 350 {
		test.Fatalf("expected 350, got %d", sum.AmountMinorUnits())
	}
}

func TestPriceDisplayFormats(test *testing.T) {
	test.Parallel()
	cases := []struct {
		amount   int64
		currency string
		expected string
	}{
		{1050, "EUR", "10.50 EUR"},
		{1234, "USD", "12.34 USD"},
		{1000, "JPY", "1000 JPY"},
	}
	for _, testCase := range cases {
		price, err := NewPrice(testCase.amount, testCase.currency)
		if err != nil {
			test.Fatalf("new price: %v", err)
		}
		if price.String() != testCase.expected {
			test.Fatalf("expected %q, got %q", testCase.expected, price.String())
		}
	}
}
