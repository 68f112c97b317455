package alerts

import (
	"context"
	"time"
)

// Alert es la notificación saliente por un evento crítico de telemetría.
type Alert struct {
	PetID             string    `json:"pet_id,omitempty"`
	DeviceID          string    `json:"device_id"`
	ReadingID         string    `json:"reading_id"`
	HealthStatus      string    `json:"health_status"`
	HealthIndex       float64   `json:"health_index"`
	Message           string    `json:"message,omitempty"`
	VetRecommendation string    `json:"vet_recommendation,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Notifier entrega la alerta a un canal externo. Los callers son
// best-effort: loguean el error y siguen, nunca cortan la ingesta.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// Nop descarta las alertas. Se usa cuando no hay webhook configurado.
type Nop struct{}

func (Nop) Notify(context.Context, Alert) error { return nil }
