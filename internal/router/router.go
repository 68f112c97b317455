package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	mem "pet-insurance-api/internal/adapters/storage/memory"
	pg "pet-insurance-api/internal/adapters/storage/postgres"
	"pet-insurance-api/internal/domain/admin"
	"pet-insurance-api/internal/domain/claims"
	"pet-insurance-api/internal/domain/clinics"
	"pet-insurance-api/internal/domain/medrecords"
	"pet-insurance-api/internal/domain/pets"
	"pet-insurance-api/internal/domain/policies"
	"pet-insurance-api/internal/domain/telemetry"
	"pet-insurance-api/internal/domain/users"
	"pet-insurance-api/internal/middleware"
	"pet-insurance-api/internal/platform/logger"
	"pet-insurance-api/internal/ports/alerts"
	"pet-insurance-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  users.TokenIssuer // puede ser nil en tests (register/login fallan sin issuer)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: webhook de alertas IoT. Nil => descarta.
	Notifier alerts.Notifier

	Log logger.Logger

	// Rate limit de ingesta IoT por device.
	IoTRatePerSec float64
	IoTRateBurst  int
}

// autoClaimBridge conecta la ingesta de telemetría con el módulo de claims
// sin acoplar los paquetes entre sí.
type autoClaimBridge struct {
	claims *claims.Service
}

func (b autoClaimBridge) TriggerCritical(ctx context.Context, ev telemetry.CriticalEvent) error {
	_, err := b.claims.CreateFromTelemetry(ctx, claims.TelemetryInput{
		PetID:             ev.PetID,
		ReadingID:         ev.ReadingID,
		HealthStatus:      ev.HealthStatus,
		HealthIndex:       ev.HealthIndex,
		AlertMessage:      ev.AlertMessage,
		VetRecommendation: ev.VetRecommendation,
	})
	return err
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		userRepo          users.Repository
		petRepo           pets.Repository
		policyRepo        policies.Repository
		claimRepo         claims.Repository
		clinicRepo        clinics.Repository
		medicalRecordRepo medrecords.Repository
		telemetryRepo     telemetry.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	storageMode := "memory"
	if db != nil {
		storageMode = "postgres"
		userRepo = pg.NewUsersRepo(db)
		petRepo = pg.NewPetsRepo(db)
		policyRepo = pg.NewPoliciesRepo(db)
		claimRepo = pg.NewClaimsRepo(db)
		clinicRepo = pg.NewClinicsRepo(db)
		medicalRecordRepo = pg.NewMedicalRecordsRepo(db)
		telemetryRepo = pg.NewTelemetryRepo(db)
	} else {
		userRepo = mem.NewUserRepo()
		petRepo = mem.NewPetRepo()
		policyRepo = mem.NewPolicyRepo()
		claimRepo = mem.NewClaimRepo()
		clinicRepo = mem.NewClinicRepo()
		medicalRecordRepo = mem.NewMedicalRecordRepo()
		telemetryRepo = mem.NewTelemetryRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo)
	petsSvc := pets.NewService(petRepo)
	policiesSvc := policies.NewService(policyRepo)
	claimsSvc := claims.NewService(claimRepo, policiesSvc)
	clinicsSvc := clinics.NewService(clinicRepo)
	medrecordsSvc := medrecords.NewService(medicalRecordRepo, petsSvc)
	telemetrySvc := telemetry.NewService(
		telemetryRepo,
		autoClaimBridge{claims: claimsSvc},
		opts.Notifier,
		opts.Log,
	)
	adminSvc := admin.NewService(usersSvc, petsSvc, policiesSvc, claimsSvc, clinicsSvc, storageMode)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, opts.TokenIssuer)
	pets.RegisterRoutes(r, petsSvc)
	policies.RegisterRoutes(r, policiesSvc, petsSvc)
	claims.RegisterRoutes(r, claimsSvc)
	clinics.RegisterRoutes(r, clinicsSvc)
	medrecords.RegisterRoutes(r, medrecordsSvc)
	telemetry.RegisterRoutes(r, telemetrySvc, petsSvc, opts.IoTRatePerSec, opts.IoTRateBurst)
	admin.RegisterRoutes(r, adminSvc, usersSvc)

	return r
}
