package clinics

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
	r.Route("/clinics", func(cr chi.Router) {
		cr.Get("/", listClinicsHandler(svc))
		cr.Get("/{clinicID}", getClinicHandler(svc))
		cr.Post("/", createClinicHandler(svc))
		cr.Patch("/{clinicID}", updateClinicHandler(svc))
	})
}

type addressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type createClinicRequest struct {
	Name     string         `json:"name"`
	Address  addressPayload `json:"address"`
	Phone    string         `json:"phone"`
	Email    string         `json:"email"`
	Services []string       `json:"services"`
}

type updateClinicRequest struct {
	Name     *string         `json:"name"`
	Address  *addressPayload `json:"address"`
	Phone    *string         `json:"phone"`
	Email    *string         `json:"email"`
	Services *[]string       `json:"services"`
	IsActive *bool           `json:"is_active"`
}

type clinicResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Address   addressPayload `json:"address"`
	Phone     string         `json:"phone,omitempty"`
	Email     string         `json:"email,omitempty"`
	Services  []string       `json:"services,omitempty"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// El directorio de clínicas es visible para cualquier usuario autenticado.
func listClinicsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireClaims(w, r); !ok {
			return
		}

		items, err := svc.List(r.Context(), r.URL.Query().Get("city"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]clinicResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toClinicResponse(c))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getClinicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireClaims(w, r); !ok {
			return
		}

		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "clinicID"))
		if err != nil {
			http.Error(w, "clinic not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toClinicResponse(c))
	}
}

func createClinicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		var req createClinicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), CreateInput{
			Name:     req.Name,
			Address:  toAddress(req.Address),
			Phone:    req.Phone,
			Email:    req.Email,
			Services: req.Services,
		})
		if err != nil {
			writeClinicError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toClinicResponse(c))
	}
}

func updateClinicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		var req updateClinicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Name:     req.Name,
			Phone:    req.Phone,
			Email:    req.Email,
			Services: req.Services,
			IsActive: req.IsActive,
		}
		if req.Address != nil {
			addr := toAddress(*req.Address)
			in.Address = &addr
		}

		c, err := svc.Update(r.Context(), chi.URLParam(r, "clinicID"), in)
		if err != nil {
			writeClinicError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toClinicResponse(c))
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

func requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return auth.Claims{}, false
	}
	if claims.Role != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

func writeClinicError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		http.Error(w, "clinic not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAddress(a addressPayload) Address {
	return Address{
		Street:     a.Street,
		City:       a.City,
		Country:    a.Country,
		PostalCode: a.PostalCode,
	}
}

func toClinicResponse(c Clinic) clinicResponse {
	return clinicResponse{
		ID:   c.ID,
		Name: c.Name,
		Address: addressPayload{
			Street:     c.Address.Street,
			City:       c.Address.City,
			Country:    c.Address.Country,
			PostalCode: c.Address.PostalCode,
		},
		Phone:     c.Phone,
		Email:     c.Email,
		Services:  c.Services,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
