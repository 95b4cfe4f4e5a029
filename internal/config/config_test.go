package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/dangeond")
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.SessionTTL != 168*time.Hour {
		t.Fatalf("SessionTTL = %v, want 168h", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.CookieSecure {
		t.Fatal("CookieSecure should default to false")
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	// t.Setenv registers cleanup; envconfig's "required" only triggers when
	// the variable is truly unset, which t.Setenv alone cannot express.
	t.Setenv("DB_DSN", "")
	os.Unsetenv("DB_DSN")
	t.Setenv("SESSION_SECRET", "test-secret")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() should fail without DB_DSN")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/dangeond")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("ADDR", ":9000")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":9000" {
		t.Fatalf("Addr = %q, want :9000", cfg.Addr)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v, want two entries", cfg.AllowedOrigins)
	}
}
