package pets

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-insurance-api/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deactivatePetHandler(svc))
	})
}

type createPetRequest struct {
	Name        string  `json:"name"`
	Species     string  `json:"species"`
	Breed       string  `json:"breed"`
	Gender      string  `json:"gender"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	DateOfBirth string  `json:"date_of_birth"` // YYYY-MM-DD
	Microchip   string  `json:"microchip"`
	PhotoURL    string  `json:"photo_url"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string  `json:"name"`
	Breed     *string  `json:"breed"`
	Color     *string  `json:"color"`
	Weight    *float64 `json:"weight"`
	Microchip *string  `json:"microchip"`
	PhotoURL  *string  `json:"photo_url"`
}

type petResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	Gender      string    `json:"gender,omitempty"`
	Color       string    `json:"color,omitempty"`
	Weight      float64   `json:"weight,omitempty"`
	DateOfBirth time.Time `json:"date_of_birth"`
	AgeYears    int       `json:"age_years"`
	Microchip   string    `json:"microchip,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			http.Error(w, "date_of_birth must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Gender:      req.Gender,
			Color:       req.Color,
			Weight:      req.Weight,
			DateOfBirth: dob,
			Microchip:   req.Microchip,
			PhotoURL:    req.PhotoURL,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p, time.Now()))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	// Owner-only: cada usuario ve sus mascotas
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		now := time.Now()
		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p, now))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	// Owner o staff (agente/admin/veterinario necesitan ver mascotas ajenas)
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		if p.OwnerUserID != claims.UserID && !claims.IsStaff() && claims.Role != "veterinarian" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p, time.Now()))
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), claims.UserID, UpdateInput{
			Name:      req.Name,
			Breed:     req.Breed,
			Color:     req.Color,
			Weight:    req.Weight,
			Microchip: req.Microchip,
			PhotoURL:  req.PhotoURL,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "pet not found", http.StatusNotFound)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p, time.Now()))
	}
}

func deactivatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Deactivate(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "pet not found", http.StatusNotFound)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p, time.Now()))
	}
}

func toPetResponse(p Pet, now time.Time) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     string(p.Species),
		Breed:       p.Breed,
		Gender:      string(p.Gender),
		Color:       p.Color,
		Weight:      p.Weight,
		DateOfBirth: p.DateOfBirth,
		AgeYears:    p.AgeYears(now),
		Microchip:   p.Microchip,
		PhotoURL:    p.PhotoURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
