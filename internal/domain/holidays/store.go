package holidays

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"timekeeper/internal/domain/worktime"
	"timekeeper/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context, tenantID string) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, to_char(holiday_date, 'YYYY-MM-DD'), name, region
    FROM holidays
    WHERE tenant_id = $1
    ORDER BY holiday_date
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.Region); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, tenantID string, h Holiday) (string, error) {
	day, ok := worktime.ParseDate(strings.TrimSpace(h.Date))
	if !ok || strings.TrimSpace(h.Name) == "" {
		return "", ErrInvalidHoliday
	}
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (tenant_id, holiday_date, name, region)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (tenant_id, holiday_date, region) DO UPDATE SET name = EXCLUDED.name
    RETURNING id::text
  `, tenantID, day, strings.TrimSpace(h.Name), strings.TrimSpace(h.Region)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Import upserts a batch of holidays in one round trip.
func (s *Store) Import(ctx context.Context, tenantID string, entries []Holiday) (int, error) {
	batch := &pgx.Batch{}
	for _, h := range entries {
		day, ok := worktime.ParseDate(strings.TrimSpace(h.Date))
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidHoliday, h.Date)
		}
		batch.Queue(`
      INSERT INTO holidays (tenant_id, holiday_date, name, region)
      VALUES ($1,$2,$3,$4)
      ON CONFLICT (tenant_id, holiday_date, region) DO UPDATE SET name = EXCLUDED.name
    `, tenantID, day, strings.TrimSpace(h.Name), strings.TrimSpace(h.Region))
	}
	if batch.Len() == 0 {
		return 0, nil
	}
	results := s.DB.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return i, err
		}
	}
	return batch.Len(), nil
}

func (s *Store) Delete(ctx context.Context, tenantID, holidayID string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM holidays WHERE tenant_id = $1 AND id::text = $2`, tenantID, holidayID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHolidayNotFound
	}
	return nil
}

func (s *Store) Calendar(ctx context.Context, tenantID string) (*Calendar, error) {
	entries, err := s.List(ctx, tenantID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return NewCalendar(entries), nil
}
