package pets

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
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Gender      string
	Color       string
	Weight      float64
	DateOfBirth time.Time
	Microchip   string
	PhotoURL    string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	if in.DateOfBirth.IsZero() {
		return Pet{}, ErrInvalidInput
	}
	if in.Weight < 0 {
		return Pet{}, ErrInvalidInput
	}

	species := Species(strings.ToLower(strings.TrimSpace(in.Species)))
	if !ValidSpecies(species) {
		species = SpeciesOther
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Species:     species,
		Breed:       strings.TrimSpace(in.Breed),
		Gender:      Gender(strings.TrimSpace(in.Gender)),
		Color:       strings.TrimSpace(in.Color),
		Weight:      in.Weight,
		DateOfBirth: in.DateOfBirth,
		Microchip:   strings.TrimSpace(in.Microchip),
		PhotoURL:    strings.TrimSpace(in.PhotoURL),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) ListAll(ctx context.Context) ([]Pet, error) {
	return s.repo.ListAll(ctx)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string
	Breed     *string
	Color     *string
	Weight    *float64
	Microchip *string
	PhotoURL  *string
}

// Update solo permite modificar al dueño; los campos identitarios
// (especie, fecha de nacimiento) no se tocan post-registro.
func (s *Service) Update(ctx context.Context, id, actorUserID string, in UpdateInput) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != actorUserID {
		return Pet{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Color != nil {
		p.Color = strings.TrimSpace(*in.Color)
	}
	if in.Weight != nil {
		if *in.Weight < 0 {
			return Pet{}, ErrInvalidInput
		}
		p.Weight = *in.Weight
	}
	if in.Microchip != nil {
		p.Microchip = strings.TrimSpace(*in.Microchip)
	}
	if in.PhotoURL != nil {
		p.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}

	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Deactivate es el "delete" del sistema: la mascota queda inactiva, no se borra.
func (s *Service) Deactivate(ctx context.Context, id, actorUserID string) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != actorUserID {
		return Pet{}, ErrForbidden
	}

	if !p.IsActive {
		return p, nil // idempotente
	}

	p.IsActive = false
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// OwnerOf expone el ownerUserID de una mascota.
// Se usa para checks de acceso desde otros módulos sin ciclos de imports.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
