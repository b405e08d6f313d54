package srs

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrItemExists,
		ErrInvalidRating,
		ErrInvalidState,
		ErrInvalidParameters,
		ErrNumericDomain,
		ErrItemIDMismatch,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v and %v should be distinct sentinels", a, b)
			}
		}
	}
}

func TestWrappedSentinelMatches(t *testing.T) {
	err := fmt.Errorf("%w: %q", ErrNotFound, "item-1")
	if !errors.Is(err, ErrNotFound) {
		t.Error("wrapped sentinel should match with errors.Is")
	}
	if errors.Is(err, ErrItemExists) {
		t.Error("wrapped sentinel should not match a different sentinel")
	}
}
