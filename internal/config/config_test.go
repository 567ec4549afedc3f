package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("IDEMPOTENCY_TTL", "not-a-duration")

	cfg := Load()
	if cfg.HTTPPort != "5001" {
		t.Errorf("expected default port, got %q", cfg.HTTPPort)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("expected sqlite, got %q", cfg.DBDriver)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h, got %s", cfg.TokenTTL)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("invalid duration must fall back to 24h, got %s", cfg.IdempotencyTTL)
	}
	if cfg.JWTIssuer != "blood-bank-api" {
		t.Errorf("unexpected issuer %q", cfg.JWTIssuer)
	}
}
