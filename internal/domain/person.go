// Package domain contains the core data types for the Doorstep contact logbook.
// This package has zero heavyweight dependencies and is imported by every
// other internal package (repo, service, geocode, handler).
package domain

import "time"

// Person is the top-level aggregate: a contact with optional address,
// reachability details, and geocoded coordinates. Notes belong to a person
// and are cascade-deleted with it.
type Person struct {
	ID        int64
	Name      string
	Address   string
	Phone     string
	Email     string
	Location  *LatLng // nil when the address was never geocoded
	CreatedAt time.Time
	UpdatedAt time.Time

	// Notes is populated by read paths that attach notes
	// (GetWithNotes, List), ordered by CreatedAt ascending.
	Notes []Note
}
