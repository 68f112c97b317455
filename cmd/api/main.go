package main

import (
	"log"
	"net/http"
	"time"

	jwtadapter "pet-insurance-api/internal/adapters/auth/jwt"
	webhookalerts "pet-insurance-api/internal/adapters/alerts/webhook"
	pg "pet-insurance-api/internal/adapters/storage/postgres"
	"pet-insurance-api/internal/platform/config"
	"pet-insurance-api/internal/platform/httpclient"
	"pet-insurance-api/internal/platform/logger"
	"pet-insurance-api/internal/ports/alerts"
	"pet-insurance-api/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	appLog := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	jwtManager, err := jwtadapter.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatalf("jwt error: %v", err)
	}

	opts := router.Options{
		AuthVerifier:  jwtManager,
		TokenIssuer:   jwtManager,
		Log:           appLog,
		IoTRatePerSec: cfg.IoTRatePerSec,
		IoTRateBurst:  cfg.IoTRateBurst,
	}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("postgres error: %v", err)
		}
		defer db.Close()
		opts.DB = db
		appLog.Info("storage: postgres", nil)
	} else {
		appLog.Info("storage: in-memory", nil)
	}

	var notifier alerts.Notifier = alerts.Nop{}
	if cfg.AlertWebhookURL != "" {
		n, err := webhookalerts.New(httpclient.New(0), cfg.AlertWebhookURL)
		if err != nil {
			log.Fatalf("webhook error: %v", err)
		}
		notifier = n
		appLog.Info("alert webhook enabled", map[string]any{"url": cfg.AlertWebhookURL})
	}
	opts.Notifier = notifier

	addr := ":" + cfg.Port

	srv := &http.Server{
		Addr:         addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	appLog.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
