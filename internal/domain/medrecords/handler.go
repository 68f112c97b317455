package medrecords

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-insurance-api/internal/middleware"
	"pet-insurance-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medical-records", func(mr chi.Router) {
		mr.Post("/", createRecordHandler(svc))
		mr.Get("/pet/{petID}", listRecordsByPetHandler(svc))
		mr.Get("/{recordID}", getRecordHandler(svc))
		mr.Patch("/{recordID}", updateRecordHandler(svc))
	})
}

type createRecordRequest struct {
	PetID          string   `json:"pet_id"`
	ClinicID       string   `json:"clinic_id"`
	VisitDate      string   `json:"visit_date"` // YYYY-MM-DD
	RecordType     string   `json:"record_type"`
	Description    string   `json:"description"`
	Diagnosis      string   `json:"diagnosis"`
	Treatment      string   `json:"treatment"`
	Medications    []string `json:"medications"`
	Cost           float64  `json:"cost"`
	Notes          string   `json:"notes"`
	RelatedClaimID string   `json:"related_claim_id"`
}

type updateRecordRequest struct {
	Diagnosis   *string   `json:"diagnosis"`
	Treatment   *string   `json:"treatment"`
	Medications *[]string `json:"medications"`
	Cost        *float64  `json:"cost"`
	Notes       *string   `json:"notes"`
}

type recordResponse struct {
	ID             string    `json:"id"`
	PetID          string    `json:"pet_id"`
	ClinicID       string    `json:"clinic_id,omitempty"`
	Veterinarian   string    `json:"veterinarian_user_id"`
	VisitDate      time.Time `json:"visit_date"`
	RecordType     string    `json:"record_type"`
	Description    string    `json:"description"`
	Diagnosis      string    `json:"diagnosis,omitempty"`
	Treatment      string    `json:"treatment,omitempty"`
	Medications    []string  `json:"medications,omitempty"`
	Cost           float64   `json:"cost"`
	Notes          string    `json:"notes,omitempty"`
	RelatedClaimID string    `json:"related_claim_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Solo un veterinario escribe en el historial clínico.
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireVet(w, r)
		if !ok {
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		visit, err := time.Parse("2006-01-02", req.VisitDate)
		if err != nil {
			http.Error(w, "visit_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			PetID:          req.PetID,
			ClinicID:       req.ClinicID,
			VisitDate:      visit,
			RecordType:     RecordType(req.RecordType),
			Description:    req.Description,
			Diagnosis:      req.Diagnosis,
			Treatment:      req.Treatment,
			Medications:    req.Medications,
			Cost:           req.Cost,
			Notes:          req.Notes,
			RelatedClaimID: req.RelatedClaimID,
		})
		if err != nil {
			writeRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func listRecordsByPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		petID := chi.URLParam(r, "petID")
		if !canReadPetHistory(r, svc, claims, petID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByPet(r.Context(), petID)
		if err != nil {
			writeRecordError(w, err)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			writeRecordError(w, err)
			return
		}

		if !canReadPetHistory(r, svc, claims, rec.PetID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

func updateRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireVet(w, r); !ok {
			return
		}

		var req updateRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.Update(r.Context(), chi.URLParam(r, "recordID"), UpdateInput{
			Diagnosis:   req.Diagnosis,
			Treatment:   req.Treatment,
			Medications: req.Medications,
			Cost:        req.Cost,
			Notes:       req.Notes,
		})
		if err != nil {
			writeRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// canReadPetHistory: el historial lo ven el dueño de la mascota,
// los veterinarios y el staff.
func canReadPetHistory(r *http.Request, svc *Service, claims auth.Claims, petID string) bool {
	if claims.Role == auth.RoleVeterinarian || claims.IsStaff() {
		return true
	}
	ownerID, err := svc.PetOwner(r.Context(), petID)
	if err != nil {
		return false
	}
	return ownerID == claims.UserID
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

func requireVet(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return auth.Claims{}, false
	}
	if claims.Role != auth.RoleVeterinarian {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

func writeRecordError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		http.Error(w, "medical record not found", http.StatusNotFound)
	case ErrPetNotFound:
		http.Error(w, "pet not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRecordResponse(rec MedicalRecord) recordResponse {
	return recordResponse{
		ID:             rec.ID,
		PetID:          rec.PetID,
		ClinicID:       rec.ClinicID,
		Veterinarian:   rec.VeterinarianUserID,
		VisitDate:      rec.VisitDate,
		RecordType:     string(rec.RecordType),
		Description:    rec.Description,
		Diagnosis:      rec.Diagnosis,
		Treatment:      rec.Treatment,
		Medications:    rec.Medications,
		Cost:           rec.Cost,
		Notes:          rec.Notes,
		RelatedClaimID: rec.RelatedClaimID,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
