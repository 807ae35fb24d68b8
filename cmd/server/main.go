package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"reperio/internal/adapters/geocode"
	httpadapter "reperio/internal/adapters/http"
	"reperio/internal/adapters/places"
	pg "reperio/internal/adapters/postgres"
	"reperio/internal/adapters/registry"
	"reperio/internal/config"
	"reperio/internal/ports"
	"reperio/internal/services/classify"
	"reperio/internal/services/enumerate"
	scrapesvc "reperio/internal/services/scrape"
	"reperio/internal/workers/scraperunner"
)

func main() {
	cfg, err := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("config", "err", err)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required for Postgres adapters")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Wire repositories to services (ports)
	var _ ports.SessionRepository = db
	var _ ports.VerificationRepository = db
	var _ ports.DenylistRepository = db
	var _ ports.JobRepository = db

	placesClient := places.New(places.Config{
		BaseURL:     cfg.PlacesBaseURL,
		APIKey:      cfg.PlacesAPIKey,
		DetailDelay: cfg.DetailDelay,
		MaxListings: cfg.MaxListingsPerQuery,
	}, logger)
	geocoder := geocode.New(cfg.GeocodeURL, logger)
	registryClient := registry.New(cfg.RegistryURL, logger)

	enumerator := enumerate.New(logger)
	classifier := classify.New(db, db, registryClient, clockwork.NewRealClock(), logger)
	orch := scraperunner.NewOrchestrator(scraperunner.OrchestratorConfig{
		CheckpointEvery: cfg.CheckpointEvery,
		WorkItemDelay:   cfg.WorkItemDelay,
	}, enumerator, placesClient, classifier, geocoder, db, logger)

	scraper := scrapesvc.New(db, db)
	srv := httpadapter.New(scraper, db, orch, orch, logger)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	if cfg.ScrapeWorkers > 0 {
		go scraperunner.Run(ctx, db, orch, cfg.ScrapeWorkers, 500*time.Millisecond, logger)
		logger.Info("scrape workers started", "count", cfg.ScrapeWorkers)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	logger.Info("listening", "addr", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		logger.Error(fmt.Errorf("server error: %w", err).Error())
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
