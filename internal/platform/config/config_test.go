package config

import (
	"log/slog"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/timekeeper",
		Environment:        "development",
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 60,
		CorrectionLookback: 35,
		SeedTenantID:       "default",
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/timekeeper")
	t.Setenv("CORRECTION_INTERVAL", "6h")
	t.Setenv("FLATTEN_STANDARD_OVERTIME", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.DatabaseURL != "postgres://db/timekeeper" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if cfg.CorrectionInterval != 6*time.Hour {
		t.Fatalf("expected 6h correction interval, got %s", cfg.CorrectionInterval)
	}
	if !cfg.FlattenStandard {
		t.Fatal("expected flatten standard overtime to be enabled")
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, true},
		{"production without secret", func(c *Config) { c.Environment = "production" }, true},
		{"production with secret", func(c *Config) { c.Environment = "production"; c.JWTSecret = "s3cret" }, false},
		{"small body limit", func(c *Config) { c.MaxBodyBytes = 10 }, true},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }, true},
		{"scheduled without lookback", func(c *Config) { c.CorrectionInterval = time.Hour; c.CorrectionLookback = 0 }, true},
		{"seed without tenant", func(c *Config) { c.RunSeed = true; c.SeedTenantID = " " }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range tests {
		if got := (Config{LogLevel: raw}).SlogLevel(); got != want {
			t.Fatalf("SlogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
