package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 45*time.Second {
		t.Errorf("APITimeout = %v, want 45s", cfg.APITimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_TIMEOUT", "10s")
	t.Setenv("API_BASE_URL", "https://meals.example.com")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.APIBaseURL != "https://meals.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	if got := ParseDuration("API_TIMEOUT", 45*time.Second); got != 45*time.Second {
		t.Errorf("ParseDuration = %v, want fallback 45s", got)
	}
}
