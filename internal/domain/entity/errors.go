package entity

import "errors"

// Domain error taxonomy. Services return these (wrapped with context via %w);
// the transport layer maps them onto status codes with errors.Is.
var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor lacks ownership or role for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState indicates the requested transition is not legal from the
	// entity's current status.
	ErrInvalidState = errors.New("invalid state for requested transition")

	// ErrCapacityExceeded indicates the offer has no remaining positions.
	ErrCapacityExceeded = errors.New("offer capacity exceeded")

	// ErrDuplicateApplication indicates the student already applied to the offer.
	ErrDuplicateApplication = errors.New("duplicate application")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
)
