package domain

import (
	"strings"
	"time"
)

// Territory is a saved city/state region used to bias and filter
// address-geocoding results toward the user's area of operation.
// Identity is the normalized (city, state) pair: city trimmed, state
// trimmed and uppercased. No two territories may share the same pair.
type Territory struct {
	ID        int64
	City      string
	State     string
	Box       *BoundingBox // nil when no bounding box is known
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeCity trims surrounding whitespace. City casing is preserved as
// entered; comparisons fold case separately.
func NormalizeCity(city string) string {
	return strings.TrimSpace(city)
}

// NormalizeState trims and uppercases, so "tx" and " TX " are the same state.
func NormalizeState(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}
