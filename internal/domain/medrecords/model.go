package medrecords

import "time"

// RecordType clasifica la visita.
type RecordType string

const (
	TypeCheckup     RecordType = "checkup"
	TypeVaccination RecordType = "vaccination"
	TypeSurgery     RecordType = "surgery"
	TypeTreatment   RecordType = "treatment"
	TypeDiagnosis   RecordType = "diagnosis"
	TypeOther       RecordType = "other"
)

type MedicalRecord struct {
	ID                 string
	PetID              string
	ClinicID           string
	VeterinarianUserID string

	VisitDate   time.Time
	RecordType  RecordType
	Description string
	Diagnosis   string
	Treatment   string
	Medications []string
	Cost        float64
	Notes       string

	// Referencia débil al claim que originó o cubrió la visita.
	RelatedClaimID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidRecordType(t RecordType) bool {
	switch t {
	case TypeCheckup, TypeVaccination, TypeSurgery, TypeTreatment, TypeDiagnosis, TypeOther:
		return true
	}
	return false
}
