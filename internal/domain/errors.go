package domain

import "errors"

// Error kinds surfaced by the services. Wrap with fmt.Errorf("...: %w", ...)
// to add context and match with errors.Is.
var (
	ErrNotFound               = errors.New("not found")
	ErrCapacityExceeded       = errors.New("no available seats")
	ErrDuplicateBooking       = errors.New("person already has a ticket for this flight")
	ErrConcurrentModification = errors.New("record was modified by another request")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrHasTickets             = errors.New("record still has tickets")
	ErrUnavailable            = errors.New("storage unavailable")
)
