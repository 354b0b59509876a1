package maintenance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

// Domain-level error values returned by the maintenance ledger.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Event is a single immutable line in a unit's maintenance history.
// Once written, only NextDue may be corrected.
type Event struct {
	ID             string
	RollingStockID string
	Date           values.Date
	Description    string
	Cost           values.Price
	PerformedBy    string
	NextDue        values.Date
	MetadataJSON   string
	CreatedUnixUTC int64
}

// EventInput describes a service event to append to a unit's history.
type EventInput struct {
	Date         values.Date
	Description  string
	Cost         values.Price
	PerformedBy  string
	NextDue      values.Date
	MetadataJSON string
}

// Validate checks the required event fields.
func (input EventInput) Validate() error {
	if input.Date.IsZero() {
		return fmt.Errorf("%w: event date is required", ErrValidation)
	}
	if strings.TrimSpace(input.Description) == "" {
		return fmt.Errorf("%w: event description is required", ErrValidation)
	}
	if !input.NextDue.IsZero() && input.NextDue.Before(input.Date) {
		return fmt.Errorf("%w: next due precedes the event date", ErrValidation)
	}
	return nil
}
