package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port string

	// Storage
	DBPath     string
	DataDir    string
	ReportsDir string

	// Report generation
	DefaultTimezone string
	ReportWorkers   int

	// Admin auth. Empty hash disables the admin endpoints.
	AdminTokenHash []byte

	// Retention
	EnableCleanup        bool
	CleanupInterval      time.Duration
	ObservationRetention time.Duration
	ReportRetention      time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		DBPath:          getenv("DB_PATH", "./store.db"),
		DataDir:         getenv("DATA_DIR", ""),
		ReportsDir:      getenv("REPORTS_DIR", "./reports"),
		DefaultTimezone: getenv("DEFAULT_TIMEZONE", "America/Chicago"),
		ReportWorkers:   envInt("REPORT_WORKERS", runtime.NumCPU()),

		EnableCleanup:        envBool("ENABLE_CLEANUP", true),
		CleanupInterval:      envDurHours("CLEANUP_INTERVAL_HOURS", 24),
		ObservationRetention: envDurHours("OBSERVATION_RETENTION_DAYS", 30) * 24,
		ReportRetention:      envDurHours("REPORT_RETENTION_HOURS", 72),
	}

	if cfg.ReportWorkers < 1 {
		cfg.ReportWorkers = 1
	}

	// Admin token: accept a precomputed bcrypt hash, or hash a plain token
	if h := getenv("ADMIN_TOKEN_BCRYPT", ""); h != "" {
		cfg.AdminTokenHash = []byte(h)
	} else if tok := getenv("ADMIN_TOKEN", ""); tok != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(tok), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		cfg.AdminTokenHash = h
	}

	return cfg, nil
}

// Helper functions
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(getenv(k, ""))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

func envDurHours(k string, def int) time.Duration {
	return time.Duration(envInt(k, def)) * time.Hour
}
