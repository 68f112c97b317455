package policies

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
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
	PetID     string
	StartDate time.Time
	EndDate   time.Time

	CoverageType   CoverageType
	Premium        float64
	CoverageAmount float64
	Deductible     float64

	CoveredConditions []string
	Exclusions        []string
	Notes             string
}

// Create persiste una póliza ya cotizada (el handler corre el motor de
// pricing antes). El estado inicial se deriva, no se asume pending.
func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Policy, error) {
	if strings.TrimSpace(ownerUserID) == "" || strings.TrimSpace(in.PetID) == "" {
		return Policy{}, ErrInvalidInput
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || !in.EndDate.After(in.StartDate) {
		return Policy{}, ErrInvalidInput
	}
	if in.Premium < 0 || in.CoverageAmount < 0 || in.Deductible < 0 {
		return Policy{}, ErrInvalidInput
	}

	now := s.now()
	p := Policy{
		ID:                uuid.NewString(),
		PolicyNumber:      newPolicyNumber(now),
		PetID:             strings.TrimSpace(in.PetID),
		OwnerUserID:       ownerUserID,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		Status:            StatusPending,
		CoverageType:      in.CoverageType,
		Premium:           in.Premium,
		CoverageAmount:    in.CoverageAmount,
		Deductible:        in.Deductible,
		CoveredConditions: in.CoveredConditions,
		Exclusions:        in.Exclusions,
		Notes:             strings.TrimSpace(in.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	p.Status = DeriveStatus(p, now)

	if err := s.repo.Create(ctx, p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// GetByID devuelve la póliza con estado fresco (derivado, no persistido).
func (s *Service) GetByID(ctx context.Context, id string) (Policy, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Policy{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Policy{}, ErrNotFound
	}
	p.Status = DeriveStatus(p, s.now())
	return p, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Policy, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.freshen(items), nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Policy, error) {
	items, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	return s.freshen(items), nil
}

// ActiveForPet busca una póliza vigente (estado derivado active) para la
// mascota. Si hay varias, gana la de vencimiento más lejano.
func (s *Service) ActiveForPet(ctx context.Context, petID string) (Policy, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Policy{}, ErrInvalidInput
	}

	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return Policy{}, err
	}

	now := s.now()
	var winner Policy
	found := false
	for _, p := range items {
		if DeriveStatus(p, now) != StatusActive {
			continue
		}
		if !found || p.EndDate.After(winner.EndDate) {
			winner = p
			found = true
		}
	}
	if !found {
		return Policy{}, ErrNotFound
	}

	winner.Status = StatusActive
	return winner, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	StartDate         *time.Time
	EndDate           *time.Time
	CoveredConditions *[]string
	Exclusions        *[]string
	Notes             *string
}

// Update aplica cambios administrativos y re-deriva el estado al guardar.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Policy, error) {
	p, err := s.getRaw(ctx, id)
	if err != nil {
		return Policy{}, err
	}

	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = *in.EndDate
	}
	if !p.EndDate.After(p.StartDate) {
		return Policy{}, ErrInvalidInput
	}
	if in.CoveredConditions != nil {
		p.CoveredConditions = *in.CoveredConditions
	}
	if in.Exclusions != nil {
		p.Exclusions = *in.Exclusions
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	now := s.now()
	p.Status = DeriveStatus(p, now)
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Cancel es acción explícita y terminal.
func (s *Service) Cancel(ctx context.Context, id string) (Policy, error) {
	p, err := s.getRaw(ctx, id)
	if err != nil {
		return Policy{}, err
	}

	// Idempotente
	if p.Status == StatusCancelled {
		return p, nil
	}

	p.Status = StatusCancelled
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Renew extiende la vigencia un año desde max(endDate, ahora) y reactiva.
// Una póliza cancelada no se renueva.
func (s *Service) Renew(ctx context.Context, id string) (Policy, error) {
	p, err := s.getRaw(ctx, id)
	if err != nil {
		return Policy{}, err
	}

	if p.Status == StatusCancelled {
		return Policy{}, ErrBadState
	}

	now := s.now()
	p.EndDate = renewedEndDate(p, now)
	p.Status = StatusActive
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// getRaw lee sin derivar estado; los writes derivan ellos mismos.
func (s *Service) getRaw(ctx context.Context, id string) (Policy, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Policy{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Policy{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) freshen(items []Policy) []Policy {
	now := s.now()
	for i := range items {
		items[i].Status = DeriveStatus(items[i], now)
	}
	return items
}

// Formato heredado del backend anterior: POL-<epoch ms>-<sufijo>.
func newPolicyNumber(now time.Time) string {
	return fmt.Sprintf("POL-%d-%03d", now.UnixMilli(), rand.Intn(1000))
}
