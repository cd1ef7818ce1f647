package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port          string
	APIBaseURL    string
	APITimeout    time.Duration
	SessionSecret string
	DataDir       string
	Env           string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.APIBaseURL = getEnv("API_BASE_URL", "http://localhost:8000")
	cfg.APITimeout = ParseDuration("API_TIMEOUT", 45*time.Second)
	cfg.SessionSecret = getEnv("SESSION_SECRET", "devsessionsecret")
	cfg.DataDir = getEnv("DATA_DIR", "data")
	cfg.Env = getEnv("APP_ENV", "development")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseDuration reads an env var as a duration with default.
func ParseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}
