package main

import (
	"log"
	"net/http"
	"time"

	"storemon/app/internal/auth"
	"storemon/app/internal/config"
	"storemon/app/internal/database"
	"storemon/app/internal/handlers"
	"storemon/app/internal/ingest"
	"storemon/app/internal/reports"
	"storemon/app/internal/scheduler"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := database.Init(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// First run against an empty database: load the CSV exports
	maybeIngest(cfg)

	// Report job registry and generator
	registry := reports.NewRegistry(cfg.ReportsDir)
	gen := reports.NewGenerator(registry, cfg.ReportsDir, cfg.DefaultTimezone, cfg.ReportWorkers)

	// Start retention scheduler
	if cfg.EnableCleanup {
		sched := scheduler.New(registry, cfg.CleanupInterval, cfg.ObservationRetention, cfg.ReportRetention)
		if err := sched.Start(); err != nil {
			log.Printf("Warning: failed to start cleanup scheduler: %v", err)
		} else {
			defer sched.Stop()
			log.Printf("Cleanup scheduler started with %v interval", cfg.CleanupInterval)
		}
	}

	// Setup HTTP routes
	authMgr := auth.NewAuth(cfg.AdminTokenHash)
	handler := handlers.SetupRoutes(authMgr, registry, gen, cfg.DataDir)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// maybeIngest loads the CSV exports when the status table is still empty
// and a data directory is configured.
func maybeIngest(cfg *config.Config) {
	if cfg.DataDir == "" {
		return
	}
	count, err := database.CountObservations()
	if err != nil {
		log.Printf("Warning: failed to count observations: %v", err)
		return
	}
	if count > 0 {
		return
	}

	log.Printf("Empty database, ingesting CSV data from %s", cfg.DataDir)
	if err := ingest.LoadAll(cfg.DataDir); err != nil {
		log.Printf("Warning: ingestion failed: %v", err)
	}
}
