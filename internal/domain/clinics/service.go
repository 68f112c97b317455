package clinics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	Name     string
	Address  Address
	Phone    string
	Email    string
	Services []string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Clinic, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Clinic{}, ErrInvalidInput
	}

	now := s.now()
	c := Clinic{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Address:   in.Address,
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Services:  in.Services,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Clinic{}, err
	}
	return c, nil
}

type UpdateInput struct {
	Name     *string
	Address  *Address
	Phone    *string
	Email    *string
	Services *[]string
	IsActive *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Clinic, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Clinic{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Clinic{}, ErrInvalidInput
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Services != nil {
		c.Services = *in.Services
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return Clinic{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Clinic, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Clinic{}, ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Clinic{}, ErrNotFound
	}
	return c, nil
}

// List devuelve solo clínicas activas; el filtro de ciudad es case-insensitive.
func (s *Service) List(ctx context.Context, city string) ([]Clinic, error) {
	return s.repo.List(ctx, ListFilter{
		City:       strings.TrimSpace(city),
		OnlyActive: true,
	})
}
