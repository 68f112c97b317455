package claims

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"pet-insurance-api/internal/domain/policies"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")

	// Taxonomía propia del settlement (ver handler para el mapeo HTTP).
	ErrPolicyNotFound    = errors.New("policy not found")
	ErrPolicyNotActive   = errors.New("policy not active")
	ErrInvalidTransition = errors.New("invalid claim transition")

	// ErrOpenClaimExists: dedup de la creación automática (ventana de 1h).
	ErrOpenClaimExists = errors.New("open claim already exists for pet")
)

// dedupWindow es la ventana de deduplicación para claims automáticos.
const dedupWindow = time.Hour

type Service struct {
	repo     Repository
	policies *policies.Service
	now      func() time.Time
}

func NewService(repo Repository, policiesSvc *policies.Service) *Service {
	return &Service{
		repo:     repo,
		policies: policiesSvc,
		now:      time.Now,
	}
}

type CreateInput struct {
	PolicyID     string
	ClinicID     string
	IncidentDate time.Time
	Description  string
	Diagnosis    string
	ClaimType    ClaimType
	ClaimAmount  float64
	Notes        string
}

// Create abre un siniestro contra una póliza. Precondición dura: la póliza
// debe existir y derivar a active en este momento; si no, el claim no se crea.
func (s *Service) Create(ctx context.Context, actorUserID, actorRole string, in CreateInput) (Claim, error) {
	if strings.TrimSpace(actorUserID) == "" {
		return Claim{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Description) == "" {
		return Claim{}, ErrInvalidInput
	}
	if !ValidClaimType(in.ClaimType) {
		return Claim{}, ErrInvalidInput
	}
	if in.ClaimAmount < 0 {
		return Claim{}, ErrInvalidInput
	}
	if in.IncidentDate.IsZero() {
		return Claim{}, ErrInvalidInput
	}

	p, err := s.policies.GetByID(ctx, in.PolicyID)
	if err != nil {
		return Claim{}, ErrPolicyNotFound
	}
	if p.Status != policies.StatusActive {
		return Claim{}, ErrPolicyNotActive
	}

	// Un owner solo reclama contra sus propias pólizas.
	if actorRole == "owner" && p.OwnerUserID != actorUserID {
		return Claim{}, ErrForbidden
	}

	now := s.now()
	c := Claim{
		ID:           uuid.NewString(),
		ClaimNumber:  fmt.Sprintf("CLM-%d-%03d", now.UnixMilli(), rand.Intn(1000)),
		PolicyID:     p.ID,
		PetID:        p.PetID,
		ClinicID:     strings.TrimSpace(in.ClinicID),
		ClaimDate:    now,
		IncidentDate: in.IncidentDate,
		Description:  strings.TrimSpace(in.Description),
		Diagnosis:    strings.TrimSpace(in.Diagnosis),
		ClaimType:    in.ClaimType,
		ClaimAmount:  in.ClaimAmount,
		Status:       StatusPending,
		Source:       SourceManual,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Claim{}, err
	}
	return c, nil
}

// TelemetryInput es lo que la ingesta IoT sabe de un evento crítico.
type TelemetryInput struct {
	PetID             string
	ReadingID         string
	HealthStatus      string
	HealthIndex       float64
	AlertMessage      string
	VetRecommendation string
}

// CreateFromTelemetry abre un claim automático por estado crítico.
// Requiere póliza vigente y respeta la ventana de dedup de 1h contra
// claims abiertos de la misma mascota; el insert condicionado es atómico
// en el repositorio. El caller (ingesta) loguea el error y sigue.
func (s *Service) CreateFromTelemetry(ctx context.Context, in TelemetryInput) (Claim, error) {
	petID := strings.TrimSpace(in.PetID)
	if petID == "" {
		return Claim{}, ErrInvalidInput
	}

	p, err := s.policies.ActiveForPet(ctx, petID)
	if err != nil {
		return Claim{}, ErrPolicyNotActive
	}

	alert := in.AlertMessage
	if alert == "" {
		alert = "none"
	}

	now := s.now()
	c := Claim{
		ID:           uuid.NewString(),
		ClaimNumber:  fmt.Sprintf("IOT-%d", now.UnixMilli()),
		PolicyID:     p.ID,
		PetID:        petID,
		ClaimDate:    now,
		IncidentDate: now,
		Description: fmt.Sprintf(
			"Automatic claim from IoT device.\nHealth status: %s\nHealth index: %.0f/100\nAlert: %s\nRecommendation: %s",
			in.HealthStatus, in.HealthIndex, alert, in.VetRecommendation,
		),
		ClaimType: TypeIllness,
		Status:    StatusPending,
		Source:    SourceIoT,
		Notes:     "iot_data_ref: " + in.ReadingID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.CreateIfNoOpenClaim(ctx, c, now.Add(-dedupWindow))
	if err != nil {
		return Claim{}, err
	}
	if !created {
		return Claim{}, ErrOpenClaimExists
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Claim, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Claim{}, ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Claim{}, ErrNotFound
	}
	return c, nil
}

// ListFor devuelve los claims visibles para el actor: los owners ven los de
// sus pólizas, el resto de roles ve todo.
func (s *Service) ListFor(ctx context.Context, actorUserID, actorRole string) ([]Claim, error) {
	if actorRole != "owner" {
		return s.repo.ListAll(ctx)
	}

	pols, err := s.policies.ListByOwner(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(pols))
	for _, p := range pols {
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return []Claim{}, nil
	}
	return s.repo.ListByPolicyIDs(ctx, ids)
}

// OwnerCanRead indica si el userID es dueño de la póliza del claim.
func (s *Service) OwnerCanRead(ctx context.Context, c Claim, userID string) bool {
	p, err := s.policies.GetByID(ctx, c.PolicyID)
	if err != nil {
		return false
	}
	return p.OwnerUserID == userID
}

// StartReview mueve pending => under_review.
func (s *Service) StartReview(ctx context.Context, id, reviewerUserID string) (Claim, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Claim{}, err
	}

	if c.Status != StatusPending {
		return Claim{}, ErrInvalidTransition
	}

	now := s.now()
	c.Status = StatusUnderReview
	c.ReviewedByUserID = reviewerUserID
	c.ReviewDate = &now
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, c); err != nil {
		return Claim{}, err
	}
	return c, nil
}

// Approve corre el motor de settlement y deja el claim listo para pagar.
func (s *Service) Approve(ctx context.Context, id, reviewerUserID string) (Claim, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Claim{}, err
	}

	if c.Status != StatusPending && c.Status != StatusUnderReview {
		return Claim{}, ErrInvalidTransition
	}

	p, err := s.policies.GetByID(ctx, c.PolicyID)
	if err != nil {
		return Claim{}, ErrPolicyNotFound
	}

	now := s.now()
	c.Status = StatusApproved
	c.ApprovedAmount = ApprovedAmount(c.ClaimAmount, p.Deductible, p.CoverageAmount)
	c.ReviewedByUserID = reviewerUserID
	c.ReviewDate = &now
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, c); err != nil {
		return Claim{}, err
	}
	return c, nil
}

// Reject requiere un motivo. Terminal.
func (s *Service) Reject(ctx context.Context, id, reviewerUserID, reason string) (Claim, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Claim{}, ErrInvalidInput
	}

	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Claim{}, err
	}

	if c.Status != StatusPending && c.Status != StatusUnderReview {
		return Claim{}, ErrInvalidTransition
	}

	now := s.now()
	c.Status = StatusRejected
	c.RejectionReason = reason
	c.ReviewedByUserID = reviewerUserID
	c.ReviewDate = &now
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, c); err != nil {
		return Claim{}, err
	}
	return c, nil
}

// Pay solo es alcanzable desde approved. Terminal.
func (s *Service) Pay(ctx context.Context, id string) (Claim, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Claim{}, err
	}

	if c.Status != StatusApproved {
		return Claim{}, ErrInvalidTransition
	}

	now := s.now()
	c.Status = StatusPaid
	c.PaymentDate = &now
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, c); err != nil {
		return Claim{}, err
	}
	return c, nil
}
