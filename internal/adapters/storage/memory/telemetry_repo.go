package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-insurance-api/internal/domain/telemetry"
)

type telemetryRepo struct {
	mu       sync.RWMutex
	readings []telemetry.Reading
}

func NewTelemetryRepo() telemetry.Repository {
	return &telemetryRepo{}
}

func (r *telemetryRepo) Create(ctx context.Context, reading telemetry.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(reading.ID) == "" {
		return errors.New("reading id required")
	}
	r.readings = append(r.readings, reading)
	return nil
}

func (r *telemetryRepo) GetLatestByPet(ctx context.Context, petID string) (telemetry.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *telemetry.Reading
	for i := range r.readings {
		rd := &r.readings[i]
		if rd.PetID != petID {
			continue
		}
		if latest == nil || rd.Timestamp.After(latest.Timestamp) {
			latest = rd
		}
	}
	if latest == nil {
		return telemetry.Reading{}, ErrNotFound
	}
	return *latest, nil
}

func (r *telemetryRepo) ListByPetRange(ctx context.Context, petID string, from, to time.Time, limit int) ([]telemetry.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]telemetry.Reading, 0)
	for _, rd := range r.readings {
		if rd.PetID != petID {
			continue
		}
		if rd.Timestamp.Before(from) || rd.Timestamp.After(to) {
			continue
		}
		out = append(out, rd)
	}

	sortReadingsDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *telemetryRepo) ListCriticalByPet(ctx context.Context, petID string, limit int) ([]telemetry.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]telemetry.Reading, 0)
	for _, rd := range r.readings {
		if rd.PetID != petID {
			continue
		}
		if rd.Health.Status != telemetry.HealthWarning && rd.Health.Status != telemetry.HealthCritical {
			continue
		}
		out = append(out, rd)
	}

	sortReadingsDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *telemetryRepo) GetLatestLocation(ctx context.Context, petID string) (telemetry.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *telemetry.Reading
	for i := range r.readings {
		rd := &r.readings[i]
		if rd.PetID != petID || rd.Location == nil {
			continue
		}
		if latest == nil || rd.Timestamp.After(latest.Timestamp) {
			latest = rd
		}
	}
	if latest == nil {
		return telemetry.Reading{}, ErrNotFound
	}
	return *latest, nil
}

func sortReadingsDesc(out []telemetry.Reading) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
}
