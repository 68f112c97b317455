package telemetry

import "time"

// HealthStatus es el estado reportado por el collar/dispositivo.
type HealthStatus string

const (
	HealthNormal   HealthStatus = "normal"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

func ValidHealthStatus(s HealthStatus) bool {
	switch s {
	case HealthNormal, HealthWarning, HealthCritical:
		return true
	}
	return false
}

// Rangos físicos aceptados por la ingesta.
const (
	MinTemperature = 30.0
	MaxTemperature = 45.0
	MinHeartRate   = 20
	MaxHeartRate   = 400
)

type Sensors struct {
	Temperature   float64 // °C
	HeartRate     int     // bpm
	ActivityLevel float64 // 0-100
}

type Location struct {
	Latitude  float64
	Longitude float64
}

// Health es el bloque de salud calculado en el dispositivo.
type Health struct {
	Status            HealthStatus
	HealthIndex       float64 // 0-100
	AnomalyCount      int
	VetRecommendation string // OK | MONITOR | CONSULT | URGENT
	AlertMessage      string
}

type Reading struct {
	ID        string
	DeviceID  string
	PetID     string // opcional: dispositivos sin mascota asociada
	Timestamp time.Time

	Sensors  Sensors
	Location *Location
	Health   Health

	CreatedAt time.Time
}

// Stats agrega lecturas de una mascota en una ventana de días.
type Stats struct {
	PetID         string
	Days          int
	TotalReadings int

	AvgTemperature float64
	MinTemperature float64
	MaxTemperature float64

	AvgHeartRate float64
	MinHeartRate int
	MaxHeartRate int

	AvgActivityLevel float64

	CountByStatus map[HealthStatus]int
}
