package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	defaultDBPath = "./dev.db"
	defaultPort   = "8080"
)

// defaultCMVTargets are the standard cost-to-revenue fractions used for sale
// price suggestions when CMV_TARGETS is not set.
var defaultCMVTargets = []float64{0.20, 0.25, 0.30}

// Config holds application configuration sourced from environment variables.
type Config struct {
	DBPath     string
	Port       string
	Env        string
	CMVTargets []float64
}

// IsDev reports whether the app runs in a development environment, where
// migrations and the sample seed are applied automatically on startup.
func (c Config) IsDev() bool {
	return c.Env != "production"
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		DBPath: os.Getenv("DB_PATH"),
		Port:   os.Getenv("PORT"),
		Env:    os.Getenv("APP_ENV"),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	cfg.CMVTargets = parseCMVTargets(os.Getenv("CMV_TARGETS"))

	return cfg
}

// parseCMVTargets parses a comma-separated list of fractions. Any entry
// outside (0, 1] invalidates the whole list and the defaults apply; a half
// parsed target set would silently change every suggested price.
func parseCMVTargets(raw string) []float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultCMVTargets
	}

	parts := strings.Split(raw, ",")
	targets := make([]float64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || value <= 0 || value > 1 {
			log.Printf("warning: CMV_TARGETS entry %q is invalid, using defaults", part)
			return defaultCMVTargets
		}
		targets = append(targets, value)
	}

	return targets
}
