package dto

import "errors"

var (
	// ErrValidation marks a malformed inbound payload.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent user, device, zone or center.
	ErrNotFound = errors.New("not found")
	// ErrInternalFailure marks a failed repository call.
	ErrInternalFailure = errors.New("internal failure")
	// ErrDelivery marks a failed outbound notification. It is always caught
	// at the dispatch boundary and never aborts a committed transition.
	ErrDelivery = errors.New("delivery failed")
)
