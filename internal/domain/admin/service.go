// Package admin agrega contadores y reportes sobre el resto de los módulos.
// No tiene storage propio: delega en los services de cada dominio.
package admin

import (
	"context"
	"time"

	"pet-insurance-api/internal/domain/claims"
	"pet-insurance-api/internal/domain/clinics"
	"pet-insurance-api/internal/domain/pets"
	"pet-insurance-api/internal/domain/policies"
	"pet-insurance-api/internal/domain/users"
)

type Service struct {
	users    *users.Service
	pets     *pets.Service
	policies *policies.Service
	claims   *claims.Service
	clinics  *clinics.Service

	storageMode string
	startedAt   time.Time
	now         func() time.Time
}

func NewService(
	usersSvc *users.Service,
	petsSvc *pets.Service,
	policiesSvc *policies.Service,
	claimsSvc *claims.Service,
	clinicsSvc *clinics.Service,
	storageMode string,
) *Service {
	return &Service{
		users:       usersSvc,
		pets:        petsSvc,
		policies:    policiesSvc,
		claims:      claimsSvc,
		clinics:     clinicsSvc,
		storageMode: storageMode,
		startedAt:   time.Now(),
		now:         time.Now,
	}
}

type Dashboard struct {
	ActiveUsers    int
	ActivePets     int
	TotalPolicies  int
	ActivePolicies int
	TotalClaims    int
	PendingClaims  int
	ActiveClinics  int
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard

	allUsers, err := s.users.List(ctx, users.ListFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	for _, u := range allUsers {
		if u.IsActive {
			d.ActiveUsers++
		}
	}

	allPets, err := s.pets.ListAll(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	for _, p := range allPets {
		if p.IsActive {
			d.ActivePets++
		}
	}

	// ListAll ya deriva estados frescos.
	allPolicies, err := s.policies.ListAll(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d.TotalPolicies = len(allPolicies)
	for _, p := range allPolicies {
		if p.Status == policies.StatusActive {
			d.ActivePolicies++
		}
	}

	allClaims, err := s.claims.ListFor(ctx, "", "admin")
	if err != nil {
		return Dashboard{}, err
	}
	d.TotalClaims = len(allClaims)
	for _, c := range allClaims {
		if c.Status == claims.StatusPending || c.Status == claims.StatusUnderReview {
			d.PendingClaims++
		}
	}

	activeClinics, err := s.clinics.List(ctx, "")
	if err != nil {
		return Dashboard{}, err
	}
	d.ActiveClinics = len(activeClinics)

	return d, nil
}

type FinancialReport struct {
	PolicyCount int
	ClaimCount  int

	// Sumas en moneda entera, igual que el motor de pricing.
	TotalPremiums float64
	TotalClaimed  float64
	TotalPaidOut  float64
}

func (s *Service) FinancialReport(ctx context.Context) (FinancialReport, error) {
	var rep FinancialReport

	allPolicies, err := s.policies.ListAll(ctx)
	if err != nil {
		return FinancialReport{}, err
	}
	rep.PolicyCount = len(allPolicies)
	for _, p := range allPolicies {
		rep.TotalPremiums += p.Premium
	}

	allClaims, err := s.claims.ListFor(ctx, "", "admin")
	if err != nil {
		return FinancialReport{}, err
	}
	rep.ClaimCount = len(allClaims)
	for _, c := range allClaims {
		rep.TotalClaimed += c.ClaimAmount
		if c.Status == claims.StatusPaid {
			rep.TotalPaidOut += c.ApprovedAmount
		}
	}

	return rep, nil
}

type SystemHealth struct {
	Status      string
	StorageMode string
	Uptime      time.Duration
}

func (s *Service) SystemHealth() SystemHealth {
	return SystemHealth{
		Status:      "ok",
		StorageMode: s.storageMode,
		Uptime:      s.now().Sub(s.startedAt),
	}
}
