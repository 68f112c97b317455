package policies

import "context"

type Repository interface {
	Create(ctx context.Context, p Policy) error
	Update(ctx context.Context, p Policy) error
	GetByID(ctx context.Context, id string) (Policy, error)
	ListAll(ctx context.Context) ([]Policy, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Policy, error)
	ListByPet(ctx context.Context, petID string) ([]Policy, error)
}
