package values

import (
	"fmt"
	"strings"
)

// Currency is a validated ISO 4217 currency code.
type Currency struct {
	code string
}

// currencyExponents maps ISO 4217 codes to their minor-unit exponent
// (2 means the minor unit is 1/100 of the major unit).
var currencyExponents = map[string]int32{
	"AUD": 2,
	"BHD": 3,
	"BRL": 2,
	"CAD": 2,
	"CHF": 2,
	"CNY": 2,
	"CZK": 2,
	"DKK": 2,
	"EUR": 2,
	"GBP": 2,
	"HUF": 2,
	"JPY": 0,
	"KRW": 0,
	"KWD": 3,
	"MXN": 2,
	"NOK": 2,
	"NZD": 2,
	"PLN": 2,
	"RON": 2,
	"SEK": 2,
	"SGD": 2,
	"TND": 3,
	"TRY": 2,
	"USD": 2,
	"ZAR": 2,
}

// currencySymbols carries display symbols for the currencies the
// original collection data actually uses; everything else falls back
// to the code itself.
var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
}

// NewCurrency validates and normalizes an ISO 4217 currency code.
func NewCurrency(raw string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if _, known := currencyExponents[normalized]; !known {
		return Currency{}, fmt.Errorf("%w: unknown code %q", ErrInvalidCurrency, raw)
	}
	return Currency{code: normalized}, nil
}

// Code returns the normalized three-letter code.
func (currency Currency) Code() string {
	return currency.code
}

// String returns the normalized three-letter code.
func (currency Currency) String() string {
	return currency.code
}

// MinorUnitExponent returns the number of decimal digits in the minor unit.
func (currency Currency) MinorUnitExponent() int32 {
	return currencyExponents[currency.code]
}

// Symbol returns the display symbol, falling back to the code.
func (currency Currency) Symbol() string {
	if symbol, ok := currencySymbols[currency.code]; ok {
		return symbol
	}
	return currency.code
}

// IsZero reports whether the currency is the unset zero value.
func (currency Currency) IsZero() bool {
	return currency.code == ""
}
