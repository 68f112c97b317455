package clinics

import "time"

type Address struct {
	Street     string
	City       string
	Country    string
	PostalCode string
}

type Clinic struct {
	ID       string
	Name     string
	Address  Address
	Phone    string
	Email    string
	Services []string
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
