package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMissingPhone       = errors.New("restaurant has no phone number")
	ErrNotFound           = errors.New("reservation not found")
	ErrForbidden          = errors.New("reservation belongs to another user")
)

// ValidationError rejects bad input synchronously; nothing is persisted.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid reservation request: " + e.Reason
}

// ActiveReservationError signals that the diner already has an active
// reservation and may not open a second one.
type ActiveReservationError struct {
	ActiveID string
}

func (e ActiveReservationError) Error() string {
	return "active reservation exists: " + e.ActiveID
}

// CallPlacementError wraps an upstream voice-call failure. The reservation
// has already been marked failed and the table released when this is
// returned; the caller may retry with a fresh request.
type CallPlacementError struct {
	Err error
}

func (e CallPlacementError) Error() string {
	return fmt.Sprintf("failed to place confirmation call: %v", e.Err)
}

func (e CallPlacementError) Unwrap() error {
	return e.Err
}
