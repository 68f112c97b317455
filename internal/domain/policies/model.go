package policies

import "time"

// CoverageType es el nivel de plan contratado.
// @Enum basic, standard, premium
type CoverageType string

const (
	CoverageBasic    CoverageType = "basic"
	CoverageStandard CoverageType = "standard"
	CoveragePremium  CoverageType = "premium"
)

// Status define el ciclo de vida de la póliza.
// @Enum pending, active, expired, cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Policy representa una póliza de seguro sobre una mascota.
type Policy struct {
	ID           string
	PolicyNumber string

	PetID       string
	OwnerUserID string

	StartDate time.Time
	EndDate   time.Time
	Status    Status

	CoverageType   CoverageType
	Premium        float64 // unidades enteras de moneda
	CoverageAmount float64
	Deductible     float64

	CoveredConditions []string
	Exclusions        []string
	Notes             string

	CreatedAt time.Time
	UpdatedAt time.Time
}
