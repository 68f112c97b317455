package pets

import "time"

// Species define las especies asegurables.
// @Enum dog, cat, bird, rabbit, other
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

// Gender define el sexo de la mascota.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Pet representa una mascota registrada para asegurar.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species Species
	Breed   string
	Gender  Gender
	Color   string
	Weight  float64 // kg

	DateOfBirth time.Time
	Microchip   string
	PhotoURL    string

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgeYears calcula la edad en años calendario completos a la fecha dada.
// Mismo criterio que un cumpleaños: resta un año si todavía no cumplió.
func (p Pet) AgeYears(now time.Time) int {
	age := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

// ValidSpecies valida contra el enum; lo desconocido se registra como "other".
func ValidSpecies(s Species) bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesOther:
		return true
	}
	return false
}
