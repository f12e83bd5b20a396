package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"consentd/internal/audit"
	"consentd/internal/consent/handler"
	"consentd/internal/consent/metrics"
	"consentd/internal/consent/service"
	"consentd/internal/consent/store"
	"consentd/internal/jwt"
	"consentd/internal/platform/config"
	"consentd/internal/platform/database"
	"consentd/internal/platform/httpserver"
	"consentd/internal/platform/logger"
	"consentd/internal/platform/middleware"
	httptransport "consentd/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing consentd",
		"addr", cfg.Addr,
		"database", cfg.DatabaseURL != "",
	)

	var (
		consentStore service.Store
		health       func() error
	)
	if cfg.DatabaseURL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		pool, err := database.New(dbCfg)
		if err != nil {
			log.Error("failed to open database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		consentStore = store.NewPostgres(pool.DB())
		health = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		}
	} else {
		log.Warn("no database configured, using in-memory store")
		consentStore = store.New()
	}

	auditor := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	tokens := jwt.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	consents := service.NewService(consentStore, auditor, log,
		service.WithMetrics(metrics.New()),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Consent:        handler.New(consents, log),
		TokenValidator: tokens,
		Metadata:       middleware.NewMetadata(&middleware.MetadataConfig{TrustedProxies: cfg.TrustedProxies}),
		Health:         health,
		Logger:         log,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
