package collecting

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/catalog"
)

// Filter is the recognized search options over the owned collection.
// Every field is optional; set fields combine with logical AND. Brand,
// scale, epoch, category, and road number hit persisted indexes;
// livery, depot, and DCC capability resolve through the linked catalog
// rolling stocks. Text is a substring match over description and
// product code.
type Filter struct {
	Brand      string
	Scale      catalog.Scale
	Epoch      string
	Category   catalog.Category
	Livery     string
	Depot      string
	RoadNumber string
	DCCCapable *bool
	Text       string
}

// IsZero reports whether no constraint is set.
func (filter Filter) IsZero() bool {
	return filter == Filter{}
}

// Validate rejects enum values outside the closed dictionaries.
func (filter Filter) Validate() error {
	if filter.Scale != "" {
		if _, err := catalog.ParseScale(string(filter.Scale)); err != nil {
			return fmt.Errorf("%w: scale %q", ErrValidation, filter.Scale)
		}
	}
	if filter.Category != "" {
		if _, err := catalog.ParseCategory(string(filter.Category)); err != nil {
			return fmt.Errorf("%w: category %q", ErrValidation, filter.Category)
		}
	}
	return nil
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// Page selects one window of a filtered listing. Cursor is the opaque
// token returned by the previous window; empty means the first page.
type Page struct {
	Limit  int
	Cursor string
}

// ItemPage is one window of results plus the cursor for the next one.
// Ordering is deterministic on (description, id), so identical filters
// return identical pages and cursors stay valid across calls.
type ItemPage struct {
	Items      []CollectionItem
	NextCursor string
}

// PageKey is the keyset position after which the next window starts.
type PageKey struct {
	Description string `json:"d"`
	ID          string `json:"i"`
}

// IsZero reports whether the key addresses the start of the listing.
func (key PageKey) IsZero() bool {
	return key == PageKey{}
}

// EncodeCursor renders a page key as an opaque token.
func EncodeCursor(key PageKey) string {
	raw, _ := json.Marshal(key)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque token back into a page key.
func DecodeCursor(cursor string) (PageKey, error) {
	if cursor == "" {
		return PageKey{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return PageKey{}, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	var key PageKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return PageKey{}, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	return key, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
