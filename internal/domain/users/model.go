package users

import "time"

// Address es la dirección postal del usuario.
type Address struct {
	Street     string
	City       string
	Country    string
	PostalCode string
}

// User representa una cuenta del sistema (dueño, veterinario, agente o admin).
type User struct {
	ID string

	Email        string
	PasswordHash string // nunca se serializa hacia afuera

	FirstName string
	LastName  string
	Phone     string

	Role    string // auth.Role*
	Address Address

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
