package clinics

import "context"

type ListFilter struct {
	City       string
	OnlyActive bool
}

type Repository interface {
	Create(ctx context.Context, c Clinic) error
	Update(ctx context.Context, c Clinic) error
	GetByID(ctx context.Context, id string) (Clinic, error)
	List(ctx context.Context, f ListFilter) ([]Clinic, error)
}
