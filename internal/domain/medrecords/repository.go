package medrecords

import "context"

type Repository interface {
	Create(ctx context.Context, rec MedicalRecord) error
	Update(ctx context.Context, rec MedicalRecord) error
	GetByID(ctx context.Context, id string) (MedicalRecord, error)

	// ListByPet devuelve el historial ordenado por fecha de visita descendente.
	ListByPet(ctx context.Context, petID string) ([]MedicalRecord, error)
}
