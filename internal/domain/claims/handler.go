package claims

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
	r.Route("/claims", func(cr chi.Router) {
		cr.Post("/", createClaimHandler(svc))
		cr.Get("/", listClaimsHandler(svc))
		cr.Get("/{claimID}", getClaimHandler(svc))
		cr.Post("/{claimID}/review", reviewClaimHandler(svc))
		cr.Post("/{claimID}/approve", approveClaimHandler(svc))
		cr.Post("/{claimID}/reject", rejectClaimHandler(svc))
		cr.Post("/{claimID}/pay", payClaimHandler(svc))
	})
}

type createClaimRequest struct {
	PolicyID     string  `json:"policy_id"`
	ClinicID     string  `json:"clinic_id"`
	IncidentDate string  `json:"incident_date"` // YYYY-MM-DD
	Description  string  `json:"description"`
	Diagnosis    string  `json:"diagnosis"`
	ClaimType    string  `json:"claim_type"`
	ClaimAmount  float64 `json:"claim_amount"`
	Notes        string  `json:"notes"`
}

type rejectClaimRequest struct {
	Reason string `json:"reason"`
}

type claimResponse struct {
	ID              string     `json:"id"`
	ClaimNumber     string     `json:"claim_number"`
	PolicyID        string     `json:"policy_id"`
	PetID           string     `json:"pet_id"`
	ClinicID        string     `json:"clinic_id,omitempty"`
	ClaimDate       time.Time  `json:"claim_date"`
	IncidentDate    time.Time  `json:"incident_date"`
	Description     string     `json:"description"`
	Diagnosis       string     `json:"diagnosis,omitempty"`
	ClaimType       string     `json:"claim_type"`
	ClaimAmount     float64    `json:"claim_amount"`
	ApprovedAmount  float64    `json:"approved_amount"`
	Status          string     `json:"status"`
	Source          string     `json:"source"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	ReviewDate      *time.Time `json:"review_date,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func createClaimHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req createClaimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		incident, err := time.Parse("2006-01-02", req.IncidentDate)
		if err != nil {
			http.Error(w, "incident_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), claims.UserID, claims.Role, CreateInput{
			PolicyID:     req.PolicyID,
			ClinicID:     req.ClinicID,
			IncidentDate: incident,
			Description:  req.Description,
			Diagnosis:    req.Diagnosis,
			ClaimType:    ClaimType(req.ClaimType),
			ClaimAmount:  req.ClaimAmount,
			Notes:        req.Notes,
		})
		if err != nil {
			writeClaimError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toClaimResponse(c))
	}
}

func listClaimsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.ListFor(r.Context(), claims.UserID, claims.Role)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]claimResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toClaimResponse(c))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getClaimHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "claimID"))
		if err != nil {
			http.Error(w, "claim not found", http.StatusNotFound)
			return
		}

		if !claims.IsStaff() && claims.Role != auth.RoleVeterinarian &&
			!svc.OwnerCanRead(r.Context(), c, claims.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toClaimResponse(c))
	}
}

func reviewClaimHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireStaff(w, r)
		if !ok {
			return
		}

		c, err := svc.StartReview(r.Context(), chi.URLParam(r, "claimID"), claims.UserID)
		if err != nil {
			writeClaimError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toClaimResponse(c))
	}
}

func approveClaimHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireStaff(w, r)
		if !ok {
			return
		}

		c, err := svc.Approve(r.Context(), chi.URLParam(r, "claimID"), claims.UserID)
		if err != nil {
			writeClaimError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toClaimResponse(c))
	}
}

func rejectClaimHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireStaff(w, r)
		if !ok {
			return
		}

		var req rejectClaimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Reject(r.Context(), chi.URLParam(r, "claimID"), claims.UserID, req.Reason)
		if err != nil {
			writeClaimError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toClaimResponse(c))
	}
}

func payClaimHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireStaff(w, r); !ok {
			return
		}

		c, err := svc.Pay(r.Context(), chi.URLParam(r, "claimID"))
		if err != nil {
			writeClaimError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toClaimResponse(c))
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

// requireStaff: las transiciones de settlement son de agente/admin.
func requireStaff(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return auth.Claims{}, false
	}
	if !claims.IsStaff() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

func writeClaimError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	case ErrNotFound:
		http.Error(w, "claim not found", http.StatusNotFound)
	case ErrPolicyNotFound:
		http.Error(w, "policy not found", http.StatusNotFound)
	case ErrPolicyNotActive:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case ErrInvalidTransition, ErrOpenClaimExists:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toClaimResponse(c Claim) claimResponse {
	return claimResponse{
		ID:              c.ID,
		ClaimNumber:     c.ClaimNumber,
		PolicyID:        c.PolicyID,
		PetID:           c.PetID,
		ClinicID:        c.ClinicID,
		ClaimDate:       c.ClaimDate,
		IncidentDate:    c.IncidentDate,
		Description:     c.Description,
		Diagnosis:       c.Diagnosis,
		ClaimType:       string(c.ClaimType),
		ClaimAmount:     c.ClaimAmount,
		ApprovedAmount:  c.ApprovedAmount,
		Status:          string(c.Status),
		Source:          string(c.Source),
		ReviewedBy:      c.ReviewedByUserID,
		ReviewDate:      c.ReviewDate,
		RejectionReason: c.RejectionReason,
		PaymentDate:     c.PaymentDate,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
