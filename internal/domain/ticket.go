package domain

import "time"

// Ticket links exactly one person to exactly one flight. The flight
// reference is fixed at issue time; only the person may change afterwards.
type Ticket struct {
	ID           int64
	TicketNumber string
	SeatNumber   int64
	PriceCents   int64
	Version      int64
	FlightID     int64
	PersonID     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
