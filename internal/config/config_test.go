package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("CLOSING_CRON", "")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Fatalf("expected default port 3000, got %q", cfg.Server.Port)
	}
	if cfg.Cache.ReportTTL != 30*time.Second {
		t.Fatalf("expected 30s report ttl, got %s", cfg.Cache.ReportTTL)
	}
	if cfg.Reporting.Location().String() != "America/Sao_Paulo" {
		t.Fatalf("unexpected location %s", cfg.Reporting.Location())
	}
}

func TestLoadRejectsInvalidCron(t *testing.T) {
	t.Setenv("CLOSING_CRON", "every evening")

	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid cron expression to be rejected")
	}
}

func TestValidateRequiresStrongSecretInProduction(t *testing.T) {
	cfg := &Config{
		Env:       "production",
		Server:    ServerConfig{Port: "3000"},
		Auth:      AuthConfig{JWTSecret: "short"},
		Reporting: ReportingConfig{Timezone: "UTC", ClosingCron: "0 22 * * *"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected short secret to be rejected in production")
	}

	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected strong secret to pass, got %v", err)
	}
}

func TestDSNPrefersURL(t *testing.T) {
	d := DatabaseConfig{URL: "postgres://u:p@db:5432/cashflow", Host: "ignored"}
	if d.DSN() != d.URL {
		t.Fatalf("expected DATABASE_URL to win, got %q", d.DSN())
	}
}
