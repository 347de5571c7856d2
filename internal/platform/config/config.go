package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	Environment        string
	LogLevel           string
	MigrationsDir      string
	RunMigrations      bool
	RunSeed            bool
	SeedTenantID       string
	SeedHolidaysFile   string
	MaxBodyBytes       int64
	RateLimitPerMinute int
	CorrectionInterval time.Duration
	CorrectionLookback int
	FlattenStandard    bool
	MetricsEnabled     bool
}

func Load() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", false),
		SeedTenantID:       getEnv("SEED_TENANT_ID", "default"),
		SeedHolidaysFile:   getEnv("SEED_HOLIDAYS_FILE", ""),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 4<<20)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CorrectionInterval: getEnvDuration("CORRECTION_INTERVAL", 0),
		CorrectionLookback: getEnvInt("CORRECTION_LOOKBACK_DAYS", 35),
		FlattenStandard:    getEnvBool("FLATTEN_STANDARD_OVERTIME", false),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.CorrectionInterval < 0 {
		return fmt.Errorf("CORRECTION_INTERVAL must not be negative")
	}
	if c.CorrectionInterval > 0 && c.CorrectionLookback <= 0 {
		return fmt.Errorf("CORRECTION_LOOKBACK_DAYS must be positive when CORRECTION_INTERVAL is set")
	}
	if c.RunSeed && strings.TrimSpace(c.SeedTenantID) == "" {
		return fmt.Errorf("SEED_TENANT_ID must be set when RUN_SEED is true")
	}
	return nil
}
