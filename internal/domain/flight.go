package domain

import "time"

type Flight struct {
	ID             int64
	FlightNumber   string
	Origin         string
	Destination    string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	AvailableSeats int
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
