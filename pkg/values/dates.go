package values

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// Date is a validated calendar date persisted as an ISO 8601 string.
type Date struct {
	value time.Time
}

// NewDate validates an ISO 8601 date string (YYYY-MM-DD).
func NewDate(raw string) (Date, error) {
	parsed, err := time.Parse(isoDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return Date{value: parsed}, nil
}

// DateFromTime truncates a time to its calendar date.
func DateFromTime(value time.Time) Date {
	year, month, day := value.UTC().Date()
	return Date{value: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Time returns the date at midnight UTC.
func (date Date) Time() time.Time {
	return date.value
}

// Before reports whether the date precedes another.
func (date Date) Before(other Date) bool {
	return date.value.Before(other.value)
}

// IsZero reports whether the date is the unset zero value.
func (date Date) IsZero() bool {
	return date.value.IsZero()
}

// String returns the canonical ISO form.
func (date Date) String() string {
	return date.value.Format(isoDateLayout)
}

// DeliveryDate records when a catalog model ships: a bare year, a
// year/month, or a year/quarter ("2026", "2026/01", "2026/Q1").
type DeliveryDate struct {
	value string
}

var deliveryDatePattern = regexp.MustCompile(`^(\d{4})(?:/(0[1-9]|1[0-2])|/Q([1-4]))?$`)

// NewDeliveryDate parses and canonicalizes a delivery date string.
func NewDeliveryDate(raw string) (DeliveryDate, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	groups := deliveryDatePattern.FindStringSubmatch(normalized)
	if groups == nil {
		return DeliveryDate{}, fmt.Errorf("%w: %q", ErrInvalidDeliveryDate, raw)
	}
	year, err := strconv.Atoi(groups[1])
	if err != nil || year < 1900 || year > 2999 {
		return DeliveryDate{}, fmt.Errorf("%w: year out of range in %q", ErrInvalidDeliveryDate, raw)
	}
	switch {
	case groups[2] != "":
		return DeliveryDate{value: fmt.Sprintf("%04d/%s", year, groups[2])}, nil
	case groups[3] != "":
		return DeliveryDate{value: fmt.Sprintf("%04d/Q%s", year, groups[3])}, nil
	default:
		return DeliveryDate{value: fmt.Sprintf("%04d", year)}, nil
	}
}

// Year returns the delivery year.
func (deliveryDate DeliveryDate) Year() int {
	year, _ := strconv.Atoi(deliveryDate.value[:4])
	return year
}

// IsZero reports whether the delivery date is the unset zero value.
func (deliveryDate DeliveryDate) IsZero() bool {
	return deliveryDate.value == ""
}

// String returns the canonical form.
func (deliveryDate DeliveryDate) String() string {
	return deliveryDate.value
}
