package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-insurance-api/internal/domain/telemetry"
)

type TelemetryRepo struct {
	db *sql.DB
}

func NewTelemetryRepo(db *sql.DB) *TelemetryRepo {
	return &TelemetryRepo{db: db}
}

const readingColumns = `
	id, device_id, pet_id, ts,
	temperature, heart_rate, activity_level,
	latitude, longitude,
	health_status, health_index, anomaly_count, vet_recommendation, alert_message,
	created_at
`

func (r *TelemetryRepo) Create(ctx context.Context, reading telemetry.Reading) error {
	var lat, lon sql.NullFloat64
	if reading.Location != nil {
		lat = sql.NullFloat64{Float64: reading.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: reading.Location.Longitude, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO telemetry_readings (`+readingColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		reading.ID,
		reading.DeviceID,
		reading.PetID,
		reading.Timestamp,
		reading.Sensors.Temperature,
		reading.Sensors.HeartRate,
		reading.Sensors.ActivityLevel,
		lat,
		lon,
		string(reading.Health.Status),
		reading.Health.HealthIndex,
		reading.Health.AnomalyCount,
		reading.Health.VetRecommendation,
		reading.Health.AlertMessage,
		reading.CreatedAt,
	)
	return err
}

func (r *TelemetryRepo) GetLatestByPet(ctx context.Context, petID string) (telemetry.Reading, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+readingColumns+`
		FROM telemetry_readings
		WHERE pet_id = $1
		ORDER BY ts DESC
		LIMIT 1
	`, petID)
	return scanReading(row)
}

func (r *TelemetryRepo) ListByPetRange(ctx context.Context, petID string, from, to time.Time, limit int) ([]telemetry.Reading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM telemetry_readings
		WHERE pet_id = $1
		  AND ts >= $2
		  AND ts <= $3
		ORDER BY ts DESC
		LIMIT $4
	`, petID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReadings(rows)
}

func (r *TelemetryRepo) ListCriticalByPet(ctx context.Context, petID string, limit int) ([]telemetry.Reading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM telemetry_readings
		WHERE pet_id = $1
		  AND health_status IN ('warning', 'critical')
		ORDER BY ts DESC
		LIMIT $2
	`, petID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReadings(rows)
}

func (r *TelemetryRepo) GetLatestLocation(ctx context.Context, petID string) (telemetry.Reading, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+readingColumns+`
		FROM telemetry_readings
		WHERE pet_id = $1
		  AND latitude IS NOT NULL
		ORDER BY ts DESC
		LIMIT 1
	`, petID)
	return scanReading(row)
}

func collectReadings(rows *sql.Rows) ([]telemetry.Reading, error) {
	out := make([]telemetry.Reading, 0)
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reading)
	}
	return out, rows.Err()
}

func scanReading(row rowScanner) (telemetry.Reading, error) {
	var reading telemetry.Reading
	var lat, lon sql.NullFloat64
	var status string
	err := row.Scan(
		&reading.ID,
		&reading.DeviceID,
		&reading.PetID,
		&reading.Timestamp,
		&reading.Sensors.Temperature,
		&reading.Sensors.HeartRate,
		&reading.Sensors.ActivityLevel,
		&lat,
		&lon,
		&status,
		&reading.Health.HealthIndex,
		&reading.Health.AnomalyCount,
		&reading.Health.VetRecommendation,
		&reading.Health.AlertMessage,
		&reading.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return telemetry.Reading{}, ErrNotFound
	}
	if err != nil {
		return telemetry.Reading{}, err
	}

	reading.Health.Status = telemetry.HealthStatus(status)
	if lat.Valid && lon.Valid {
		reading.Location = &telemetry.Location{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
		}
	}
	return reading, nil
}
