package values

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MeasureUnit enumerates the supported physical length units.
type MeasureUnit string

const (
	UnitMillimeters MeasureUnit = "mm"
	UnitInches      MeasureUnit = "in"
	UnitMeters      MeasureUnit = "m"
	UnitKilometers  MeasureUnit = "km"
	UnitMiles       MeasureUnit = "mi"
)

// millimetersPerUnit expresses each unit in millimeters.
var millimetersPerUnit = map[MeasureUnit]decimal.Decimal{
	UnitMillimeters: decimal.New(1, 0),
	UnitInches:      decimal.RequireFromString("25.4"),
	UnitMeters:      decimal.New(1000, 0),
	UnitKilometers:  decimal.New(1000000, 0),
	UnitMiles:       decimal.RequireFromString("1609344").Shift(-3),
}

// ParseMeasureUnit validates a raw unit string.
func ParseMeasureUnit(raw string) (MeasureUnit, error) {
	unit := MeasureUnit(strings.ToLower(strings.TrimSpace(raw)))
	if _, known := millimetersPerUnit[unit]; !known {
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, raw)
	}
	return unit, nil
}

// String returns the unit suffix.
func (unit MeasureUnit) String() string {
	return string(unit)
}

// Measure is a physical length value together with its unit.
// Lengths over buffers default to millimeters.
type Measure struct {
	value decimal.Decimal
	unit  MeasureUnit
}

// NewMeasure validates a decimal value against a unit.
func NewMeasure(rawValue decimal.Decimal, rawUnit string) (Measure, error) {
	unit := MeasureUnit(rawUnit)
	if rawUnit == "" {
		unit = UnitMillimeters
	} else {
		parsed, err := ParseMeasureUnit(rawUnit)
		if err != nil {
			return Measure{}, err
		}
		unit = parsed
	}
	if rawValue.IsNegative() {
		return Measure{}, fmt.Errorf("%w: negative value %s", ErrInvalidMeasure, rawValue)
	}
	return Measure{value: rawValue, unit: unit}, nil
}

// MeasureFromString parses a decimal value string and a unit.
func MeasureFromString(rawValue string, rawUnit string) (Measure, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(rawValue))
	if err != nil {
		return Measure{}, fmt.Errorf("%w: %q", ErrInvalidMeasure, rawValue)
	}
	return NewMeasure(value, rawUnit)
}

// Value returns the decimal magnitude.
func (measure Measure) Value() decimal.Decimal {
	return measure.value
}

// Unit returns the measure unit.
func (measure Measure) Unit() MeasureUnit {
	return measure.unit
}

// ConvertTo converts the measure to another unit exactly.
func (measure Measure) ConvertTo(target MeasureUnit) (Measure, error) {
	targetFactor, known := millimetersPerUnit[target]
	if !known {
		return Measure{}, fmt.Errorf("%w: %q", ErrInvalidUnit, target)
	}
	inMillimeters := measure.value.Mul(millimetersPerUnit[measure.unit])
	converted := inMillimeters.DivRound(targetFactor, 6)
	return Measure{value: converted, unit: target}, nil
}

// Equal compares two measures structurally after converting to a
// common unit; never a floating-point comparison.
func (measure Measure) Equal(other Measure) bool {
	left := measure.value.Mul(millimetersPerUnit[measure.unit])
	right := other.value.Mul(millimetersPerUnit[other.unit])
	return left.Equal(right)
}

// IsZero reports whether the measure is the unset zero value.
func (measure Measure) IsZero() bool {
	return measure.unit == ""
}

// String formats the measure for display, e.g. "210 mm".
func (measure Measure) String() string {
	return fmt.Sprintf("%s %s", measure.value, measure.unit)
}
