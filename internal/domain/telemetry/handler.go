package telemetry

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"pet-insurance-api/internal/domain/pets"
	"pet-insurance-api/internal/middleware"
	"pet-insurance-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service, ratePerSec float64, burst int) {
	limiter := newDeviceLimiter(ratePerSec, burst)

	r.Route("/iot", func(ir chi.Router) {
		// Endpoint de dispositivo: autentica por device_id, no por usuario.
		ir.Post("/readings", ingestHandler(svc, limiter))

		ir.Route("/pets/{petID}", func(pr chi.Router) {
			pr.Get("/latest", latestHandler(svc, petsSvc))
			pr.Get("/history", historyHandler(svc, petsSvc))
			pr.Get("/critical", criticalHandler(svc, petsSvc))
			pr.Get("/stats", statsHandler(svc, petsSvc))
			pr.Get("/location", locationHandler(svc, petsSvc))
		})
	})
}

// deviceLimiter limita la ingesta por device_id.
type deviceLimiter struct {
	mu    sync.Mutex
	perID map[string]*rate.Limiter
	r     rate.Limit
	b     int
}

func newDeviceLimiter(perSec float64, burst int) *deviceLimiter {
	if perSec <= 0 {
		perSec = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &deviceLimiter{
		perID: map[string]*rate.Limiter{},
		r:     rate.Limit(perSec),
		b:     burst,
	}
}

func (d *deviceLimiter) allow(deviceID string) bool {
	d.mu.Lock()
	lim, ok := d.perID[deviceID]
	if !ok {
		lim = rate.NewLimiter(d.r, d.b)
		d.perID[deviceID] = lim
	}
	d.mu.Unlock()
	return lim.Allow()
}

type sensorsPayload struct {
	Temperature   float64 `json:"temperature"`
	HeartRate     int     `json:"heart_rate"`
	ActivityLevel float64 `json:"activity_level"`
}

type locationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type healthPayload struct {
	Status            string  `json:"status"`
	HealthIndex       float64 `json:"health_index"`
	AnomalyCount      int     `json:"anomaly_count"`
	VetRecommendation string  `json:"vet_recommendation"`
	AlertMessage      string  `json:"alert_message"`
}

type ingestRequest struct {
	DeviceID  string           `json:"device_id"`
	PetID     string           `json:"pet_id"`
	Timestamp *time.Time       `json:"timestamp"`
	Sensors   sensorsPayload   `json:"sensors"`
	Location  *locationPayload `json:"location"`
	Health    healthPayload    `json:"health"`
}

type readingResponse struct {
	ID        string           `json:"id"`
	DeviceID  string           `json:"device_id"`
	PetID     string           `json:"pet_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Sensors   sensorsPayload   `json:"sensors"`
	Location  *locationPayload `json:"location,omitempty"`
	Health    healthPayload    `json:"health"`
	CreatedAt time.Time        `json:"created_at"`
}

type statsResponse struct {
	PetID            string         `json:"pet_id"`
	Days             int            `json:"days"`
	TotalReadings    int            `json:"total_readings"`
	AvgTemperature   float64        `json:"avg_temperature"`
	MinTemperature   float64        `json:"min_temperature"`
	MaxTemperature   float64        `json:"max_temperature"`
	AvgHeartRate     float64        `json:"avg_heart_rate"`
	MinHeartRate     int            `json:"min_heart_rate"`
	MaxHeartRate     int            `json:"max_heart_rate"`
	AvgActivityLevel float64        `json:"avg_activity_level"`
	CountByStatus    map[string]int `json:"count_by_status"`
}

func ingestHandler(svc *Service, limiter *deviceLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ingestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		deviceID := strings.TrimSpace(req.DeviceID)
		if deviceID == "" {
			http.Error(w, "device_id is required", http.StatusBadRequest)
			return
		}

		if !limiter.allow(deviceID) {
			http.Error(w, "too many readings", http.StatusTooManyRequests)
			return
		}

		in := IngestInput{
			DeviceID: deviceID,
			PetID:    req.PetID,
			Sensors: Sensors{
				Temperature:   req.Sensors.Temperature,
				HeartRate:     req.Sensors.HeartRate,
				ActivityLevel: req.Sensors.ActivityLevel,
			},
			Health: Health{
				Status:            HealthStatus(req.Health.Status),
				HealthIndex:       req.Health.HealthIndex,
				AnomalyCount:      req.Health.AnomalyCount,
				VetRecommendation: req.Health.VetRecommendation,
				AlertMessage:      req.Health.AlertMessage,
			},
		}
		if req.Timestamp != nil {
			in.Timestamp = *req.Timestamp
		}
		if req.Location != nil {
			in.Location = &Location{
				Latitude:  req.Location.Latitude,
				Longitude: req.Location.Longitude,
			}
		}

		reading, err := svc.Ingest(r.Context(), in)
		if err != nil {
			writeTelemetryError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toReadingResponse(reading))
	}
}

func latestHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := requirePetAccess(w, r, petsSvc)
		if !ok {
			return
		}

		reading, err := svc.Latest(r.Context(), petID)
		if err != nil {
			writeTelemetryError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toReadingResponse(reading))
	}
}

func historyHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := requirePetAccess(w, r, petsSvc)
		if !ok {
			return
		}

		q := r.URL.Query()
		var from, to time.Time
		if s := q.Get("from"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "from must be RFC3339", http.StatusBadRequest)
				return
			}
			from = t
		}
		if s := q.Get("to"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "to must be RFC3339", http.StatusBadRequest)
				return
			}
			to = t
		}
		limit, _ := strconv.Atoi(q.Get("limit"))

		items, err := svc.History(r.Context(), petID, from, to, limit)
		if err != nil {
			writeTelemetryError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toReadingResponses(items))
	}
}

func criticalHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := requirePetAccess(w, r, petsSvc)
		if !ok {
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.Critical(r.Context(), petID, limit)
		if err != nil {
			writeTelemetryError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toReadingResponses(items))
	}
}

func statsHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := requirePetAccess(w, r, petsSvc)
		if !ok {
			return
		}

		days, _ := strconv.Atoi(r.URL.Query().Get("days"))
		st, err := svc.Stats(r.Context(), petID, days)
		if err != nil {
			writeTelemetryError(w, err)
			return
		}

		counts := map[string]int{}
		for k, v := range st.CountByStatus {
			counts[string(k)] = v
		}

		writeJSON(w, http.StatusOK, statsResponse{
			PetID:            st.PetID,
			Days:             st.Days,
			TotalReadings:    st.TotalReadings,
			AvgTemperature:   st.AvgTemperature,
			MinTemperature:   st.MinTemperature,
			MaxTemperature:   st.MaxTemperature,
			AvgHeartRate:     st.AvgHeartRate,
			MinHeartRate:     st.MinHeartRate,
			MaxHeartRate:     st.MaxHeartRate,
			AvgActivityLevel: st.AvgActivityLevel,
			CountByStatus:    counts,
		})
	}
}

func locationHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := requirePetAccess(w, r, petsSvc)
		if !ok {
			return
		}

		reading, err := svc.LastLocation(r.Context(), petID)
		if err != nil {
			writeTelemetryError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toReadingResponse(reading))
	}
}

// requirePetAccess: telemetría visible para el dueño, veterinarios y staff.
func requirePetAccess(w http.ResponseWriter, r *http.Request, petsSvc *pets.Service) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}

	petID := chi.URLParam(r, "petID")
	if claims.IsStaff() || claims.Role == auth.RoleVeterinarian {
		return petID, true
	}

	pet, err := petsSvc.GetByID(r.Context(), petID)
	if err != nil {
		http.Error(w, "pet not found", http.StatusNotFound)
		return "", false
	}
	if pet.OwnerUserID != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return petID, true
}

func writeTelemetryError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		http.Error(w, "no readings for pet", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toReadingResponse(r Reading) readingResponse {
	resp := readingResponse{
		ID:        r.ID,
		DeviceID:  r.DeviceID,
		PetID:     r.PetID,
		Timestamp: r.Timestamp,
		Sensors: sensorsPayload{
			Temperature:   r.Sensors.Temperature,
			HeartRate:     r.Sensors.HeartRate,
			ActivityLevel: r.Sensors.ActivityLevel,
		},
		Health: healthPayload{
			Status:            string(r.Health.Status),
			HealthIndex:       r.Health.HealthIndex,
			AnomalyCount:      r.Health.AnomalyCount,
			VetRecommendation: r.Health.VetRecommendation,
			AlertMessage:      r.Health.AlertMessage,
		},
		CreatedAt: r.CreatedAt,
	}
	if r.Location != nil {
		resp.Location = &locationPayload{
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
		}
	}
	return resp
}

func toReadingResponses(items []Reading) []readingResponse {
	out := make([]readingResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toReadingResponse(r))
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
