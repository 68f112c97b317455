package users

import "context"

type ListFilter struct {
	Role   string
	Search string // matchea nombre/apellido/email, case-insensitive
}

type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, filter ListFilter) ([]User, error)
}
