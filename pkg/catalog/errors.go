package catalog

import "errors"

// Domain-level error values returned by the catalog service.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
	ErrImmutableRef  = errors.New("immutable reference")
	ErrNoRollingStock = errors.New("railway model requires at least one rolling stock")
)
