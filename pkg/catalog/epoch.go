package catalog

import (
	"fmt"
	"strings"
)

// Epoch is a validated railway modelling era. The grammar accepts a
// base epoch I..VI, an optional half marker ("IIIa"), and spans of two
// epochs joined with a slash ("III/IV"). The canonical form preserves
// the half marker in lower case.
type Epoch struct {
	value string
}

var baseEpochOrdinals = map[string]int{
	"I":   1,
	"II":  2,
	"III": 3,
	"IV":  4,
	"V":   5,
	"VI":  6,
}

// ParseEpoch validates and canonicalizes a raw epoch string.
func ParseEpoch(raw string) (Epoch, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Epoch{}, fmt.Errorf("%w: empty epoch", ErrValidation)
	}
	segments := strings.Split(trimmed, "/")
	if len(segments) > 2 {
		return Epoch{}, fmt.Errorf("%w: epoch %q spans more than two eras", ErrValidation, raw)
	}
	canonical := make([]string, 0, len(segments))
	previousOrdinal := 0
	for _, segment := range segments {
		base, half, err := parseEpochSegment(segment)
		if err != nil {
			return Epoch{}, fmt.Errorf("%w: epoch %q", ErrValidation, raw)
		}
		ordinal := baseEpochOrdinals[base]
		if previousOrdinal != 0 && ordinal <= previousOrdinal {
			return Epoch{}, fmt.Errorf("%w: epoch span %q is not increasing", ErrValidation, raw)
		}
		previousOrdinal = ordinal
		canonical = append(canonical, base+half)
	}
	return Epoch{value: strings.Join(canonical, "/")}, nil
}

func parseEpochSegment(segment string) (string, string, error) {
	cleaned := strings.TrimSpace(segment)
	half := ""
	if len(cleaned) > 1 {
		switch cleaned[len(cleaned)-1] {
		case 'a', 'A':
			half = "a"
			cleaned = cleaned[:len(cleaned)-1]
		case 'b', 'B':
			half = "b"
			cleaned = cleaned[:len(cleaned)-1]
		}
	}
	base := strings.ToUpper(strings.TrimSpace(cleaned))
	if _, known := baseEpochOrdinals[base]; !known {
		return "", "", fmt.Errorf("unknown base epoch %q", segment)
	}
	return base, half, nil
}

// IsZero reports whether the epoch is the unset zero value.
func (epoch Epoch) IsZero() bool {
	return epoch.value == ""
}

// String returns the canonical epoch form.
func (epoch Epoch) String() string {
	return epoch.value
}
