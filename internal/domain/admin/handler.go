package admin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-insurance-api/internal/domain/users"
	"pet-insurance-api/internal/middleware"
	"pet-insurance-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, usersSvc *users.Service) {
	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/dashboard", dashboardHandler(svc))
		ar.Get("/reports/financial", financialReportHandler(svc))
		ar.Get("/system/health", systemHealthHandler(svc))

		// Gestión de usuarios: las rutas viven acá, la lógica en users.
		ar.Get("/users", listUsersHandler(usersSvc))
		ar.Patch("/users/{userID}/role", updateUserRoleHandler(usersSvc))
		ar.Patch("/users/{userID}/status", updateUserStatusHandler(usersSvc))
	})
}

type dashboardResponse struct {
	ActiveUsers    int `json:"active_users"`
	ActivePets     int `json:"active_pets"`
	TotalPolicies  int `json:"total_policies"`
	ActivePolicies int `json:"active_policies"`
	TotalClaims    int `json:"total_claims"`
	PendingClaims  int `json:"pending_claims"`
	ActiveClinics  int `json:"active_clinics"`
}

type financialReportResponse struct {
	PolicyCount   int     `json:"policy_count"`
	ClaimCount    int     `json:"claim_count"`
	TotalPremiums float64 `json:"total_premiums"`
	TotalClaimed  float64 `json:"total_claimed"`
	TotalPaidOut  float64 `json:"total_paid_out"`
}

type systemHealthResponse struct {
	Status        string `json:"status"`
	StorageMode   string `json:"storage_mode"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type updateStatusRequest struct {
	IsActive bool `json:"is_active"`
}

type adminUserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func dashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		d, err := svc.Dashboard(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, dashboardResponse{
			ActiveUsers:    d.ActiveUsers,
			ActivePets:     d.ActivePets,
			TotalPolicies:  d.TotalPolicies,
			ActivePolicies: d.ActivePolicies,
			TotalClaims:    d.TotalClaims,
			PendingClaims:  d.PendingClaims,
			ActiveClinics:  d.ActiveClinics,
		})
	}
}

func financialReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		rep, err := svc.FinancialReport(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, financialReportResponse{
			PolicyCount:   rep.PolicyCount,
			ClaimCount:    rep.ClaimCount,
			TotalPremiums: rep.TotalPremiums,
			TotalClaimed:  rep.TotalClaimed,
			TotalPaidOut:  rep.TotalPaidOut,
		})
	}
}

func systemHealthHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		h := svc.SystemHealth()
		writeJSON(w, http.StatusOK, systemHealthResponse{
			Status:        h.Status,
			StorageMode:   h.StorageMode,
			UptimeSeconds: int64(h.Uptime.Seconds()),
		})
	}
}

func listUsersHandler(usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		q := r.URL.Query()
		items, err := usersSvc.List(r.Context(), users.ListFilter{
			Role:   q.Get("role"),
			Search: q.Get("search"),
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]adminUserResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toAdminUserResponse(u))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func updateUserRoleHandler(usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req updateRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := usersSvc.UpdateRole(r.Context(), chi.URLParam(r, "userID"), req.Role)
		if err != nil {
			writeUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAdminUserResponse(u))
	}
}

func updateUserStatusHandler(usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := usersSvc.SetActive(r.Context(), chi.URLParam(r, "userID"), req.IsActive)
		if err != nil {
			writeUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAdminUserResponse(u))
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if claims.Role != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func writeUserError(w http.ResponseWriter, err error) {
	switch err {
	case users.ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case users.ErrNotFound:
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAdminUserResponse(u users.User) adminUserResponse {
	return adminUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
