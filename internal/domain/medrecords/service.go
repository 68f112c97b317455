package medrecords

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-insurance-api/internal/domain/pets"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrPetNotFound  = errors.New("pet not found")
)

type Service struct {
	repo Repository
	pets *pets.Service
	now  func() time.Time
}

func NewService(repo Repository, petsSvc *pets.Service) *Service {
	return &Service{repo: repo, pets: petsSvc, now: time.Now}
}

type CreateInput struct {
	PetID          string
	ClinicID       string
	VisitDate      time.Time
	RecordType     RecordType
	Description    string
	Diagnosis      string
	Treatment      string
	Medications    []string
	Cost           float64
	Notes          string
	RelatedClaimID string
}

func (s *Service) Create(ctx context.Context, veterinarianUserID string, in CreateInput) (MedicalRecord, error) {
	if strings.TrimSpace(veterinarianUserID) == "" {
		return MedicalRecord{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Description) == "" {
		return MedicalRecord{}, ErrInvalidInput
	}
	if !ValidRecordType(in.RecordType) {
		return MedicalRecord{}, ErrInvalidInput
	}
	if in.VisitDate.IsZero() {
		return MedicalRecord{}, ErrInvalidInput
	}
	if in.Cost < 0 {
		return MedicalRecord{}, ErrInvalidInput
	}

	if _, err := s.pets.GetByID(ctx, in.PetID); err != nil {
		return MedicalRecord{}, ErrPetNotFound
	}

	now := s.now()
	rec := MedicalRecord{
		ID:                 uuid.NewString(),
		PetID:              in.PetID,
		ClinicID:           strings.TrimSpace(in.ClinicID),
		VeterinarianUserID: veterinarianUserID,
		VisitDate:          in.VisitDate,
		RecordType:         in.RecordType,
		Description:        strings.TrimSpace(in.Description),
		Diagnosis:          strings.TrimSpace(in.Diagnosis),
		Treatment:          strings.TrimSpace(in.Treatment),
		Medications:        in.Medications,
		Cost:               in.Cost,
		Notes:              strings.TrimSpace(in.Notes),
		RelatedClaimID:     strings.TrimSpace(in.RelatedClaimID),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return MedicalRecord{}, err
	}
	return rec, nil
}

type UpdateInput struct {
	Diagnosis   *string
	Treatment   *string
	Medications *[]string
	Cost        *float64
	Notes       *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (MedicalRecord, error) {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return MedicalRecord{}, err
	}

	if in.Diagnosis != nil {
		rec.Diagnosis = strings.TrimSpace(*in.Diagnosis)
	}
	if in.Treatment != nil {
		rec.Treatment = strings.TrimSpace(*in.Treatment)
	}
	if in.Medications != nil {
		rec.Medications = *in.Medications
	}
	if in.Cost != nil {
		if *in.Cost < 0 {
			return MedicalRecord{}, ErrInvalidInput
		}
		rec.Cost = *in.Cost
	}
	if in.Notes != nil {
		rec.Notes = strings.TrimSpace(*in.Notes)
	}
	rec.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return MedicalRecord{}, err
	}
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (MedicalRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MedicalRecord{}, ErrInvalidInput
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return MedicalRecord{}, ErrNotFound
	}
	return rec, nil
}

// ListByPet devuelve el historial de la mascota, visita más reciente primero.
func (s *Service) ListByPet(ctx context.Context, petID string) ([]MedicalRecord, error) {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, ErrPetNotFound
	}
	return s.repo.ListByPet(ctx, petID)
}

// PetOwner expone el dueño de la mascota para los chequeos de acceso del handler.
func (s *Service) PetOwner(ctx context.Context, petID string) (string, error) {
	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return "", ErrPetNotFound
	}
	return p.OwnerUserID, nil
}
