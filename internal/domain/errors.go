package domain

import "errors"

// Sentinel errors classifying every failure the emulator can produce.
// Callers branch with errors.Is; messages wrapped around these name the
// precondition that was violated.
var (
	// ErrConfiguration marks bad or contradictory caller input: missing
	// climate data, both climate sources at once, or a reference year
	// outside the supported range.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotLand marks a resolved pixel with no growing-season data
	// (ocean or no-data cell in the planting-day field).
	ErrNotLand = errors.New("pixel is not a valid land growing-season location")

	// ErrInvalidInput marks malformed internal data shapes: wrong
	// coefficient or indicator counts, empty or mislengthed series.
	ErrInvalidInput = errors.New("invalid input")
)
