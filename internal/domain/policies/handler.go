package policies

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-insurance-api/internal/domain/pets"
	"pet-insurance-api/internal/middleware"
	"pet-insurance-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Route("/policies", func(pr chi.Router) {
		pr.Post("/quote", quoteHandler())
		pr.Post("/", createPolicyHandler(svc, petsSvc))
		pr.Get("/", listPoliciesHandler(svc))
		pr.Get("/{policyID}", getPolicyHandler(svc))
		pr.Patch("/{policyID}", updatePolicyHandler(svc))
		pr.Post("/{policyID}/cancel", cancelPolicyHandler(svc))
		pr.Post("/{policyID}/renew", renewPolicyHandler(svc))
	})
}

type quoteRequest struct {
	CoverageType string  `json:"coverage_type"`
	Species      string  `json:"species"`
	AgeYears     float64 `json:"age_years"`
}

type createPolicyRequest struct {
	PetID             string   `json:"pet_id"`
	CoverageType      string   `json:"coverage_type"`
	StartDate         string   `json:"start_date"` // YYYY-MM-DD
	EndDate           string   `json:"end_date"`   // YYYY-MM-DD
	CoveredConditions []string `json:"covered_conditions"`
	Exclusions        []string `json:"exclusions"`
	Notes             string   `json:"notes"`
}

type updatePolicyRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	StartDate         *string   `json:"start_date"`
	EndDate           *string   `json:"end_date"`
	CoveredConditions *[]string `json:"covered_conditions"`
	Exclusions        *[]string `json:"exclusions"`
	Notes             *string   `json:"notes"`
}

type policyResponse struct {
	ID                string    `json:"id"`
	PolicyNumber      string    `json:"policy_number"`
	PetID             string    `json:"pet_id"`
	OwnerUserID       string    `json:"owner_user_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Status            string    `json:"status"`
	CoverageType      string    `json:"coverage_type"`
	Premium           float64   `json:"premium"`
	CoverageAmount    float64   `json:"coverage_amount"`
	Deductible        float64   `json:"deductible"`
	CoveredConditions []string  `json:"covered_conditions,omitempty"`
	Exclusions        []string  `json:"exclusions,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type createPolicyResponse struct {
	Policy policyResponse `json:"policy"`
	Quote  PremiumResult  `json:"quote"`
}

func quoteHandler() http.HandlerFunc {
	// Cotización pura: no persiste nada.
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireClaims(w, r); !ok {
			return
		}

		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.AgeYears < 0 {
			http.Error(w, "age_years must be >= 0", http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, Quote(req.CoverageType, req.Species, req.AgeYears))
	}
}

func createPolicyHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	// Owner asegura sus mascotas; un agente puede asegurar cualquiera.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}
		if claims.Role != auth.RoleOwner && claims.Role != auth.RoleAgent {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createPolicyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		pet, err := petsSvc.GetByID(r.Context(), req.PetID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		ownerUserID := pet.OwnerUserID
		if claims.Role == auth.RoleOwner && ownerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// El motor cotiza; el service solo persiste el resultado.
		quote := Quote(req.CoverageType, string(pet.Species), float64(pet.AgeYears(time.Now())))

		p, err := svc.Create(r.Context(), ownerUserID, CreateInput{
			PetID:             pet.ID,
			StartDate:         start,
			EndDate:           end,
			CoverageType:      quote.CoverageType,
			Premium:           quote.Premium,
			CoverageAmount:    quote.CoverageAmount,
			Deductible:        quote.Deductible,
			CoveredConditions: req.CoveredConditions,
			Exclusions:        req.Exclusions,
			Notes:             req.Notes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, createPolicyResponse{
			Policy: toPolicyResponse(p),
			Quote:  quote,
		})
	}
}

func listPoliciesHandler(svc *Service) http.HandlerFunc {
	// Owners ven las suyas; el resto de roles ve todo.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var (
			items []Policy
			err   error
		)
		if claims.Role == auth.RoleOwner {
			items, err = svc.ListByOwner(r.Context(), claims.UserID)
		} else {
			items, err = svc.ListAll(r.Context())
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]policyResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPolicyResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getPolicyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "policyID"))
		if err != nil {
			http.Error(w, "policy not found", http.StatusNotFound)
			return
		}

		if p.OwnerUserID != claims.UserID && !claims.IsStaff() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toPolicyResponse(p))
	}
}

func updatePolicyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}
		if !claims.IsStaff() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updatePolicyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			CoveredConditions: req.CoveredConditions,
			Exclusions:        req.Exclusions,
			Notes:             req.Notes,
		}
		if req.StartDate != nil {
			t, err := time.Parse("2006-01-02", *req.StartDate)
			if err != nil {
				http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.StartDate = &t
		}
		if req.EndDate != nil {
			t, err := time.Parse("2006-01-02", *req.EndDate)
			if err != nil {
				http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.EndDate = &t
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "policyID"), in)
		if err != nil {
			writePolicyError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPolicyResponse(p))
	}
}

func cancelPolicyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}
		if !claims.IsStaff() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		p, err := svc.Cancel(r.Context(), chi.URLParam(r, "policyID"))
		if err != nil {
			writePolicyError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPolicyResponse(p))
	}
}

func renewPolicyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}
		if !claims.IsStaff() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		p, err := svc.Renew(r.Context(), chi.URLParam(r, "policyID"))
		if err != nil {
			writePolicyError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPolicyResponse(p))
	}
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

func writePolicyError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		http.Error(w, "policy not found", http.StatusNotFound)
	case ErrBadState:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPolicyResponse(p Policy) policyResponse {
	return policyResponse{
		ID:                p.ID,
		PolicyNumber:      p.PolicyNumber,
		PetID:             p.PetID,
		OwnerUserID:       p.OwnerUserID,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		Status:            string(p.Status),
		CoverageType:      string(p.CoverageType),
		Premium:           p.Premium,
		CoverageAmount:    p.CoverageAmount,
		Deductible:        p.Deductible,
		CoveredConditions: p.CoveredConditions,
		Exclusions:        p.Exclusions,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
