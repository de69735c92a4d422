package domain

import "time"

type Person struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	DateOfBirth time.Time
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
