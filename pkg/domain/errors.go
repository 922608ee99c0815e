package domain

import "errors"

// Error taxonomy reported by the service layer. The registry itself signals
// these conditions with sentinel return values; the service wraps them so
// callers can match with errors.Is.
var (
	// ErrNotFound is returned when an operation names an unknown town.
	ErrNotFound = errors.New("town not found")

	// ErrAlreadyExists is returned when registering a town whose id is taken.
	ErrAlreadyExists = errors.New("town already exists")

	// ErrInvalidLink is returned when a vassalship between two known towns
	// cannot be created: the vassal already has a master, or the link would
	// close a cycle.
	ErrInvalidLink = errors.New("invalid vassalship")

	// ErrInvalidTown is returned for a town that carries a reserved id or a
	// negative tax.
	ErrInvalidTown = errors.New("invalid town")

	// ErrOutOfRange is returned by rank queries outside [1, count].
	ErrOutOfRange = errors.New("rank out of range")
)
