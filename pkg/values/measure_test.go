package values

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMeasureDefaultsToMillimeters(test *testing.T) {
	test.Parallel()
	measure, err := NewMeasure(decimal.RequireFromString("210"), "")
	if err != nil {
		test.Fatalf("new measure: %v", err)
	}
	if measure.Unit() != UnitMillimeters {
		test.Fatalf("expected mm default, got %s", measure.Unit())
	}
}

func TestMeasureRejectsUnknownUnit(test *testing.T) {
	test.Parallel()
	_, err := NewMeasure(decimal.New(1, 0), "furlong")
	if !errors.Is(err, ErrInvalidUnit) {
		test.Fatalf("expected ErrInvalidUnit, got %v", err)
	}
}

func TestMeasureRejectsNegativeValue(test *testing.T) {
	test.Parallel()
	_, err := NewMeasure(decimal.RequireFromString("-1"), "mm")
	if !errors.Is(err, ErrInvalidMeasure) {
		test.Fatalf("expected ErrInvalidMeasure, got %v", err)
	}
}

func TestMeasureConversionRoundTrips(test *testing.T) {
	test.Parallel()
	inches, err := MeasureFromString("1", "in")
	if err != nil {
		test.Fatalf("measure from string: %v", err)
	}
	millimeters, err := inches.ConvertTo(UnitMillimeters)
	if err != nil {
		test.Fatalf("convert: %v", err)
	}
	if !millimeters.Value().Equal(decimal.RequireFromString("25.4")) {
		test.Fatalf("expected 25.4 mm, got %s", millimeters.Value())
	}
	if !millimeters.Equal(inches) {
		test.Fatalf("expected structural equality across units")
	}
}

func TestMeasureFromStringRejectsGarbage(test *testing.T) {
	test.Parallel()
	_, err := MeasureFromString("long", "mm")
	if !errors.Is(err, ErrInvalidMeasure) {
		test.Fatalf("expected ErrInvalidMeasure, got %v", err)
	}
}

func TestDeliveryDateGrammar(test *testing.T) {
	test.Parallel()
	cases := []struct {
		raw       string
		canonical string
	}{
		{"2026", "2026"},
		{"2026/01", "2026/01"},
		{"2026/q1", "2026/Q1"},
		{" 2021/Q4 ", "2021/Q4"},
	}
	for _, testCase := range cases {
		deliveryDate, err := NewDeliveryDate(testCase.raw)
		if err != nil {
			test.Fatalf("parse %q: %v", testCase.raw, err)
		}
		if deliveryDate.String() != testCase.canonical {
			test.Fatalf("expected %q, got %q", testCase.canonical, deliveryDate.String())
		}
	}
	for _, invalid := range []string{"26", "2026/13", "2026/Q5", "soon"} {
		if _, err := NewDeliveryDate(invalid); !errors.Is(err, ErrInvalidDeliveryDate) {
			test.Fatalf("expected ErrInvalidDeliveryDate for %q, got %v", invalid, err)
		}
	}
}

func TestDateParsesISO(test *testing.T) {
	test.Parallel()
	date, err := NewDate("2024-06-15")
	if err != nil {
		test.Fatalf("parse date: %v", err)
	}
	if date.String() != "2024-06-15" {
		test.Fatalf("expected canonical form, got %q", date.String())
	}
	if _, err := NewDate("15/06/2024"); !errors.Is(err, ErrInvalidDate) {
		test.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
