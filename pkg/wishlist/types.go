package wishlist

import (
	"errors"
	"fmt"
	"strings"
)

// Domain-level error values returned by the wishlist service.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrInvariant  = errors.New("invariant violation")
)

// Priority ranks a wished item.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

var priorities = map[Priority]struct{}{
	PriorityLow:    {},
	PriorityNormal: {},
	PriorityHigh:   {},
}

// ParsePriority validates a raw priority, case-insensitively. Empty
// input defaults to NORMAL.
func ParsePriority(raw string) (Priority, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return PriorityNormal, nil
	}
	candidate := Priority(trimmed)
	if _, known := priorities[candidate]; !known {
		return "", fmt.Errorf("%w: priority %q", ErrValidation, raw)
	}
	return candidate, nil
}

// String returns the canonical priority name.
func (priority Priority) String() string {
	return string(priority)
}

// WishList is an ordered collection of desired items. Entry order is
// significant and persisted; positions are always a dense zero-based
// sequence.
type WishList struct {
	ID          string
	Name        string
	Description string
	Entries     []Entry
}

// Entry is one wished item. ItemNumber is a catalog product code, not
// an identifier; the referenced product may not exist in the catalog.
type Entry struct {
	ID         string
	WishlistID string
	ItemNumber string
	Note       string
	Priority   Priority
	Position   int
}

// EntryInput describes an entry to append at the tail of a list.
type EntryInput struct {
	ItemNumber string
	Note       string
	Priority   Priority
}

// Validate checks the entry fields; an entry needs at least an item
// number or a note to be meaningful.
func (input EntryInput) Validate() error {
	if strings.TrimSpace(input.ItemNumber) == "" && strings.TrimSpace(input.Note) == "" {
		return fmt.Errorf("%w: entry needs an item number or a note", ErrValidation)
	}
	if input.Priority != "" {
		if _, known := priorities[input.Priority]; !known {
			return fmt.Errorf("%w: priority %q", ErrValidation, input.Priority)
		}
	}
	return nil
}
