package config_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.JWTSecret != "" {
		t.Fatalf("expected JWT secret default to be empty, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if !cfg.LargeEntryThreshold.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("expected default threshold 100000, got %s", cfg.LargeEntryThreshold)
	}

	if cfg.ApprovalHoldTTL != 0 {
		t.Fatalf("expected hold TTL disabled by default, got %s", cfg.ApprovalHoldTTL)
	}

	if cfg.DirectoryCacheTTL != 5*time.Minute {
		t.Fatalf("expected directory cache TTL 5m, got %s", cfg.DirectoryCacheTTL)
	}

	if cfg.RedisPoolSize != 10 || cfg.RedisPingAttempts != 3 {
		t.Fatalf("expected redis pool 10 with 3 ping attempts, got %d/%d", cfg.RedisPoolSize, cfg.RedisPingAttempts)
	}

	policy, ok := cfg.InterestPolicy().(domain.FlatMultiplierPolicy)
	if !ok || !policy.Factor.Equal(domain.DefaultFlatMultiplier) {
		t.Fatalf("expected flat 1.16 policy, got %#v", cfg.InterestPolicy())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LARGE_ENTRY_THRESHOLD", "250000.50")
	t.Setenv("LIABILITY_INTEREST_POLICY", "declared")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled {
		t.Fatalf("expected auth settings to be set, got secret=%s enabled=%v", cfg.JWTSecret, cfg.AuthEnabled)
	}

	if cfg.StorageDriver != config.StorageMemory {
		t.Fatalf("expected memory storage, got %s", cfg.StorageDriver)
	}

	if !cfg.LargeEntryThreshold.Equal(decimal.RequireFromString("250000.50")) {
		t.Fatalf("expected threshold override, got %s", cfg.LargeEntryThreshold)
	}

	if _, ok := cfg.InterestPolicy().(domain.DeclaredRatePolicy); !ok {
		t.Fatalf("expected declared rate policy, got %#v", cfg.InterestPolicy())
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid duration", "HTTP_READ_TIMEOUT", "not-a-duration"},
		{"non-numeric pool size", "REDIS_POOL_SIZE", "many"},
		{"unknown storage driver", "STORAGE_DRIVER", "sqlite"},
		{"unknown interest policy", "LIABILITY_INTEREST_POLICY", "compound"},
		{"non-numeric threshold", "LARGE_ENTRY_THRESHOLD", "lots"},
		{"zero threshold", "LARGE_ENTRY_THRESHOLD", "0"},
		{"negative multiplier", "LIABILITY_FLAT_MULTIPLIER", "-1"},
		{"auth without secret", "AUTH_ENABLED", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", tt.key, tt.value)
			}
		})
	}
}
