package claims

import "time"

// Status define el ciclo de vida del siniestro.
// @Enum pending, under_review, approved, rejected, paid
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected" // terminal
	StatusPaid        Status = "paid"     // terminal
)

// ClaimType clasifica el siniestro.
type ClaimType string

const (
	TypeIllness  ClaimType = "illness"
	TypeAccident ClaimType = "accident"
	TypeSurgery  ClaimType = "surgery"
	TypeCheckup  ClaimType = "checkup"
	TypeOther    ClaimType = "other"
)

// Source indica el origen del siniestro.
type Source string

const (
	SourceManual Source = "manual"
	SourceIoT    Source = "iot_device"
)

// Claim referencia exactamente una póliza (referencia débil por ID;
// la póliza no conoce sus claims).
type Claim struct {
	ID          string
	ClaimNumber string

	PolicyID string
	PetID    string
	ClinicID string

	ClaimDate    time.Time
	IncidentDate time.Time

	Description string
	Diagnosis   string
	ClaimType   ClaimType

	ClaimAmount    float64
	ApprovedAmount float64 // derivado por el motor de settlement al aprobar

	Status Status
	Source Source

	ReviewedByUserID string
	ReviewDate       *time.Time
	RejectionReason  string
	PaymentDate      *time.Time

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidClaimType valida contra el enum.
func ValidClaimType(t ClaimType) bool {
	switch t {
	case TypeIllness, TypeAccident, TypeSurgery, TypeCheckup, TypeOther:
		return true
	}
	return false
}
