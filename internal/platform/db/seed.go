package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"timekeeper/internal/domain/holidays"
	"timekeeper/internal/platform/config"
)

// Seed gives the seed tenant a baseline work policy and, when configured, the
// holidays listed in SEED_HOLIDAYS_FILE. Safe to run on every start.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID := strings.TrimSpace(cfg.SeedTenantID)
	if err := ensureDefaultPolicy(ctx, pool, tenantID); err != nil {
		return fmt.Errorf("seed policy: %w", err)
	}

	if cfg.SeedHolidaysFile == "" {
		return nil
	}
	entries, err := holidays.LoadFile(cfg.SeedHolidaysFile)
	if err != nil {
		return fmt.Errorf("seed holidays: %w", err)
	}
	imported, err := holidays.NewStore(pool).Import(ctx, tenantID, entries)
	if err != nil {
		return fmt.Errorf("seed holidays: %w", err)
	}
	slog.Info("holidays seeded", "tenantId", tenantID, "count", imported)
	return nil
}

func ensureDefaultPolicy(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM work_policies WHERE tenant_id = $1", tenantID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := pool.Exec(ctx, `
    INSERT INTO work_policies (tenant_id, effective_date, standard_start_time, standard_end_time, clock_in_cutoff_time, clock_out_cutoff_time)
    VALUES ($1, DATE '2000-01-01', '09:00', '18:00', '08:30', '18:30')
  `, tenantID)
	return err
}
