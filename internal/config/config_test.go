package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxRankResults != 5 {
		t.Errorf("expected default max rank results 5, got %d", cfg.MaxRankResults)
	}
	if cfg.RankCacheTTL != 2*time.Minute {
		t.Errorf("expected default rank cache TTL 2m, got %s", cfg.RankCacheTTL)
	}
	if !cfg.SeedFixtures {
		t.Error("expected fixtures enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_RANK_RESULTS", "3")
	t.Setenv("RANK_CACHE_TTL", "30s")
	t.Setenv("SEED_FIXTURES", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.MaxRankResults != 3 {
		t.Errorf("expected max rank results 3, got %d", cfg.MaxRankResults)
	}
	if cfg.RankCacheTTL != 30*time.Second {
		t.Errorf("expected rank cache TTL 30s, got %s", cfg.RankCacheTTL)
	}
	if cfg.SeedFixtures {
		t.Error("expected fixtures disabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsIntInvalid(t *testing.T) {
	t.Setenv("MAX_RANK_RESULTS", "not-a-number")

	cfg := Load()
	if cfg.MaxRankResults != 5 {
		t.Errorf("expected fallback to default 5, got %d", cfg.MaxRankResults)
	}
}
