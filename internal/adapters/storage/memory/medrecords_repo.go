package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-insurance-api/internal/domain/medrecords"
)

type medicalRecordRepo struct {
	mu   sync.RWMutex
	byID map[string]medrecords.MedicalRecord
}

func NewMedicalRecordRepo() medrecords.Repository {
	return &medicalRecordRepo{
		byID: make(map[string]medrecords.MedicalRecord),
	}
}

func (r *medicalRecordRepo) Create(ctx context.Context, rec medrecords.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("medical record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("medical record already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *medicalRecordRepo) Update(ctx context.Context, rec medrecords.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rec.ID]; !exists {
		return ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *medicalRecordRepo) GetByID(ctx context.Context, id string) (medrecords.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return medrecords.MedicalRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *medicalRecordRepo) ListByPet(ctx context.Context, petID string) ([]medrecords.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medrecords.MedicalRecord, 0)
	for _, rec := range r.byID {
		if rec.PetID == petID {
			out = append(out, rec)
		}
	}

	// Visita más reciente primero.
	sort.Slice(out, func(i, j int) bool {
		return out[i].VisitDate.After(out[j].VisitDate)
	})
	return out, nil
}
