package srs

import "errors"

// Sentinel errors for the srs package.
// Use errors.Is to check: errors.Is(err, srs.ErrNotFound)
var (
	ErrNotFound          = errors.New("srs: item not found")
	ErrItemExists        = errors.New("srs: item already tracked")
	ErrInvalidRating     = errors.New("srs: invalid rating")
	ErrInvalidState      = errors.New("srs: invalid state for operation")
	ErrInvalidParameters = errors.New("srs: parameters out of bounds")
	ErrNumericDomain     = errors.New("srs: computed value outside numeric domain")
	ErrItemIDMismatch    = errors.New("srs: item ID mismatch in review log")
)
