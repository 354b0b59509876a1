package collecting

import "errors"

// Domain-level error values returned by the collecting service.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrInvariant  = errors.New("invariant violation")
	ErrBadCursor  = errors.New("invalid page cursor")
)
