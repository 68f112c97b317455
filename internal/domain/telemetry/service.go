package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-insurance-api/internal/platform/logger"
	"pet-insurance-api/internal/ports/alerts"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const (
	defaultHistoryWindow = 24 * time.Hour
	defaultHistoryLimit  = 100
	maxHistoryLimit      = 500

	latestCacheTTL = 5 * time.Minute
)

// CriticalEvent es lo que la ingesta comunica cuando una lectura llega
// en estado crítico.
type CriticalEvent struct {
	PetID             string
	ReadingID         string
	HealthStatus      string
	HealthIndex       float64
	AlertMessage      string
	VetRecommendation string
}

// ClaimTrigger abre un claim automático a partir de un evento crítico.
// La implementación vive del lado de claims; acá solo importa el contrato:
// es best-effort y puede fallar sin afectar la ingesta.
type ClaimTrigger interface {
	TriggerCritical(ctx context.Context, ev CriticalEvent) error
}

type Service struct {
	repo     Repository
	cache    *gocache.Cache
	trigger  ClaimTrigger
	notifier alerts.Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, trigger ClaimTrigger, notifier alerts.Notifier, log logger.Logger) *Service {
	if notifier == nil {
		notifier = alerts.Nop{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{
		repo:     repo,
		cache:    gocache.New(latestCacheTTL, 10*time.Minute),
		trigger:  trigger,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

type IngestInput struct {
	DeviceID  string
	PetID     string
	Timestamp time.Time
	Sensors   Sensors
	Location  *Location
	Health    Health
}

// Ingest valida y persiste la lectura. Si la lectura llega crítica y tiene
// mascota asociada, dispara claim automático y alerta webhook; ambos son
// best-effort: se loguean y la ingesta responde OK igual.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (Reading, error) {
	if strings.TrimSpace(in.DeviceID) == "" {
		return Reading{}, ErrInvalidInput
	}
	if in.Sensors.Temperature < MinTemperature || in.Sensors.Temperature > MaxTemperature {
		return Reading{}, ErrInvalidInput
	}
	if in.Sensors.HeartRate < MinHeartRate || in.Sensors.HeartRate > MaxHeartRate {
		return Reading{}, ErrInvalidInput
	}
	if in.Sensors.ActivityLevel < 0 || in.Sensors.ActivityLevel > 100 {
		return Reading{}, ErrInvalidInput
	}
	if !ValidHealthStatus(in.Health.Status) {
		return Reading{}, ErrInvalidInput
	}
	if in.Health.HealthIndex < 0 || in.Health.HealthIndex > 100 {
		return Reading{}, ErrInvalidInput
	}

	now := s.now()
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}

	r := Reading{
		ID:        uuid.NewString(),
		DeviceID:  strings.TrimSpace(in.DeviceID),
		PetID:     strings.TrimSpace(in.PetID),
		Timestamp: ts,
		Sensors:   in.Sensors,
		Location:  in.Location,
		Health:    in.Health,
		CreatedAt: now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Reading{}, err
	}

	if r.PetID != "" {
		s.cache.Set(latestKey(r.PetID), r, gocache.DefaultExpiration)
	}

	if r.Health.Status == HealthCritical && r.PetID != "" {
		s.handleCritical(ctx, r)
	}

	return r, nil
}

// handleCritical nunca devuelve error: la ingesta ya persistió la lectura.
func (s *Service) handleCritical(ctx context.Context, r Reading) {
	log := s.log.With(map[string]any{
		"pet_id":     r.PetID,
		"device_id":  r.DeviceID,
		"reading_id": r.ID,
	})

	if s.trigger != nil {
		err := s.trigger.TriggerCritical(ctx, CriticalEvent{
			PetID:             r.PetID,
			ReadingID:         r.ID,
			HealthStatus:      string(r.Health.Status),
			HealthIndex:       r.Health.HealthIndex,
			AlertMessage:      r.Health.AlertMessage,
			VetRecommendation: r.Health.VetRecommendation,
		})
		if err != nil {
			log.Warn("auto claim not created", map[string]any{"reason": err.Error()})
		} else {
			log.Info("auto claim created from critical reading", nil)
		}
	}

	if err := s.notifier.Notify(ctx, alerts.Alert{
		PetID:             r.PetID,
		DeviceID:          r.DeviceID,
		ReadingID:         r.ID,
		HealthStatus:      string(r.Health.Status),
		HealthIndex:       r.Health.HealthIndex,
		Message:           r.Health.AlertMessage,
		VetRecommendation: r.Health.VetRecommendation,
		OccurredAt:        r.Timestamp,
	}); err != nil {
		log.Warn("alert webhook failed", map[string]any{"reason": err.Error()})
	}
}

// Latest responde desde cache cuando puede.
func (s *Service) Latest(ctx context.Context, petID string) (Reading, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Reading{}, ErrInvalidInput
	}

	if v, ok := s.cache.Get(latestKey(petID)); ok {
		if r, ok := v.(Reading); ok {
			return r, nil
		}
	}

	r, err := s.repo.GetLatestByPet(ctx, petID)
	if err != nil {
		return Reading{}, ErrNotFound
	}
	s.cache.Set(latestKey(petID), r, gocache.DefaultExpiration)
	return r, nil
}

// History: rango por defecto últimas 24h, límite acotado a 500.
func (s *Service) History(ctx context.Context, petID string, from, to time.Time, limit int) ([]Reading, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.Add(-defaultHistoryWindow)
	}
	if from.After(to) {
		return nil, ErrInvalidInput
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	return s.repo.ListByPetRange(ctx, petID, from, to, limit)
}

func (s *Service) Critical(ctx context.Context, petID string, limit int) ([]Reading, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.ListCriticalByPet(ctx, petID, limit)
}

// Stats agrega las lecturas de los últimos `days` días en memoria.
func (s *Service) Stats(ctx context.Context, petID string, days int) (Stats, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Stats{}, ErrInvalidInput
	}
	if days <= 0 {
		days = 7
	}

	now := s.now()
	readings, err := s.repo.ListByPetRange(ctx, petID, now.AddDate(0, 0, -days), now, maxHistoryLimit)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		PetID:         petID,
		Days:          days,
		TotalReadings: len(readings),
		CountByStatus: map[HealthStatus]int{},
	}
	if len(readings) == 0 {
		return st, nil
	}

	var sumTemp, sumHR, sumActivity float64
	st.MinTemperature = readings[0].Sensors.Temperature
	st.MaxTemperature = readings[0].Sensors.Temperature
	st.MinHeartRate = readings[0].Sensors.HeartRate
	st.MaxHeartRate = readings[0].Sensors.HeartRate

	for _, r := range readings {
		sumTemp += r.Sensors.Temperature
		sumHR += float64(r.Sensors.HeartRate)
		sumActivity += r.Sensors.ActivityLevel

		if r.Sensors.Temperature < st.MinTemperature {
			st.MinTemperature = r.Sensors.Temperature
		}
		if r.Sensors.Temperature > st.MaxTemperature {
			st.MaxTemperature = r.Sensors.Temperature
		}
		if r.Sensors.HeartRate < st.MinHeartRate {
			st.MinHeartRate = r.Sensors.HeartRate
		}
		if r.Sensors.HeartRate > st.MaxHeartRate {
			st.MaxHeartRate = r.Sensors.HeartRate
		}

		st.CountByStatus[r.Health.Status]++
	}

	n := float64(len(readings))
	st.AvgTemperature = sumTemp / n
	st.AvgHeartRate = sumHR / n
	st.AvgActivityLevel = sumActivity / n

	return st, nil
}

// LastLocation devuelve la última lectura con coordenadas.
func (s *Service) LastLocation(ctx context.Context, petID string) (Reading, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Reading{}, ErrInvalidInput
	}
	r, err := s.repo.GetLatestLocation(ctx, petID)
	if err != nil {
		return Reading{}, ErrNotFound
	}
	return r, nil
}

func latestKey(petID string) string {
	return fmt.Sprintf("latest:%s", petID)
}
