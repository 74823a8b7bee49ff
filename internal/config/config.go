package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries the process-level settings for the embedded store and the
// optional remote record backend.
type Config struct {
	// DBPath is the SQLite file backing the embedded store. ":memory:" is
	// accepted for throwaway stores.
	DBPath string

	// BackendURL is the base URL of the REST record backend. Empty means
	// local-only operation.
	BackendURL string

	// BackendRPS caps outgoing requests per second to the remote backend.
	BackendRPS float64

	// LateCutoff is the wall-clock check-in time after which an attendance
	// record is marked late.
	LateCutoff string

	// HTTPTimeout bounds individual remote backend calls.
	HTTPTimeout time.Duration
}

func Load() Config {
	cfg := Config{
		DBPath:      getEnv("WORKDESK_DB_PATH", "workdesk.db"),
		BackendURL:  os.Getenv("WORKDESK_BACKEND_URL"),
		BackendRPS:  getEnvFloat("WORKDESK_BACKEND_RPS", 20),
		LateCutoff:  getEnv("WORKDESK_LATE_CUTOFF", "09:15"),
		HTTPTimeout: getEnvDuration("WORKDESK_HTTP_TIMEOUT", 10*time.Second),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
