package claims

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, c Claim) error
	Update(ctx context.Context, c Claim) error
	GetByID(ctx context.Context, id string) (Claim, error)
	ListAll(ctx context.Context) ([]Claim, error)
	ListByPolicyIDs(ctx context.Context, policyIDs []string) ([]Claim, error)

	// CreateIfNoOpenClaim inserta el claim solo si la mascota no tiene otro
	// claim en estado abierto (pending/under_review) creado desde `since`.
	// El chequeo+insert debe ser atómico en el storage (ventana de dedup
	// sin carrera read-then-write). Devuelve false si ya existía uno.
	CreateIfNoOpenClaim(ctx context.Context, c Claim, since time.Time) (bool, error)
}

// OpenStatuses son los estados que bloquean la creación automática
// de un nuevo claim dentro de la ventana de dedup.
var OpenStatuses = []Status{StatusPending, StatusUnderReview}
