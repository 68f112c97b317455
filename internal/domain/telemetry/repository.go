package telemetry

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r Reading) error

	GetLatestByPet(ctx context.Context, petID string) (Reading, error)

	// ListByPetRange devuelve lecturas en [from, to], más recientes primero.
	ListByPetRange(ctx context.Context, petID string, from, to time.Time, limit int) ([]Reading, error)

	// ListCriticalByPet devuelve lecturas warning/critical, más recientes primero.
	ListCriticalByPet(ctx context.Context, petID string, limit int) ([]Reading, error)

	// GetLatestLocation devuelve la última lectura con coordenadas.
	GetLatestLocation(ctx context.Context, petID string) (Reading, error)
}
